package valueobjects

import (
	"fmt"
	"strings"
	"time"
)

type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

var ValidBillingPeriods = map[BillingPeriod]bool{
	BillingPeriodMonthly: true,
	BillingPeriodYearly:  true,
}

// ParseBillingPeriod normalizes and validates a billing period string.
func ParseBillingPeriod(value string) (BillingPeriod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	period := BillingPeriod(normalized)

	if normalized == "" {
		return "", fmt.Errorf("billing period cannot be empty")
	}

	if !ValidBillingPeriods[period] {
		return "", fmt.Errorf("invalid billing period: %s", value)
	}

	return period, nil
}

func (b BillingPeriod) String() string {
	return string(b)
}

func (b BillingPeriod) IsValid() bool {
	return ValidBillingPeriods[b]
}

// NextPeriodEnd returns the end of one billing cycle starting at from.
// Calendar arithmetic, not fixed day counts: a monthly cycle starting
// Jan 31 ends Mar 2/3 per time.AddDate normalization.
func (b BillingPeriod) NextPeriodEnd(from time.Time) time.Time {
	switch b {
	case BillingPeriodMonthly:
		return from.AddDate(0, 1, 0)
	case BillingPeriodYearly:
		return from.AddDate(1, 0, 0)
	default:
		return time.Time{}
	}
}
