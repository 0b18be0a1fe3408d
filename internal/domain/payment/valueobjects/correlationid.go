package valueobjects

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// correlationPrefix marks external references minted by the subscription
// checkout flow. The gateway echoes the value back verbatim on webhooks,
// so the format is the only link between a gateway payment and a tenant.
const correlationPrefix = "sub"

// CorrelationID ties a checkout preference, its gateway payments and the
// resulting subscription activation together. Format:
//
//	sub_<tenantID>_<planSlug>_<unixNano>
//
// Plan slugs may contain underscores; the tenant ID and timestamp cannot,
// so parsing anchors on the first two and the last separator.
type CorrelationID struct {
	tenantID uint
	planSlug string
	nonce    int64
}

// NewCorrelationID mints a fresh correlation id for a checkout attempt.
func NewCorrelationID(tenantID uint, planSlug string, now time.Time) (CorrelationID, error) {
	if tenantID == 0 {
		return CorrelationID{}, fmt.Errorf("tenant ID is required")
	}
	if planSlug == "" {
		return CorrelationID{}, fmt.Errorf("plan slug is required")
	}
	return CorrelationID{
		tenantID: tenantID,
		planSlug: planSlug,
		nonce:    now.UnixNano(),
	}, nil
}

// ParseCorrelationID rebuilds a CorrelationID from its wire form.
func ParseCorrelationID(raw string) (CorrelationID, error) {
	parts := strings.Split(raw, "_")
	if len(parts) < 4 || parts[0] != correlationPrefix {
		return CorrelationID{}, fmt.Errorf("malformed correlation id: %q", raw)
	}

	tenantID, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || tenantID == 0 {
		return CorrelationID{}, fmt.Errorf("malformed correlation id tenant: %q", raw)
	}

	nonce, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return CorrelationID{}, fmt.Errorf("malformed correlation id nonce: %q", raw)
	}

	slug := strings.Join(parts[2:len(parts)-1], "_")
	if slug == "" {
		return CorrelationID{}, fmt.Errorf("malformed correlation id slug: %q", raw)
	}

	return CorrelationID{
		tenantID: uint(tenantID),
		planSlug: slug,
		nonce:    nonce,
	}, nil
}

// IsSubscriptionReference reports whether a raw external reference follows
// the subscription correlation convention. Webhooks carrying foreign
// references (deposits, manual charges) are acknowledged but skipped.
func IsSubscriptionReference(raw string) bool {
	_, err := ParseCorrelationID(raw)
	return err == nil
}

func (c CorrelationID) TenantID() uint   { return c.tenantID }
func (c CorrelationID) PlanSlug() string { return c.planSlug }
func (c CorrelationID) Nonce() int64     { return c.nonce }

func (c CorrelationID) String() string {
	return fmt.Sprintf("%s_%d_%s_%d", correlationPrefix, c.tenantID, c.planSlug, c.nonce)
}
