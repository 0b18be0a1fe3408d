package valueobjects

import (
	"fmt"
	"strings"
)

// Resource identifies a tenant-scoped countable resource subject to plan limits.
type Resource string

const (
	ResourceBranches         Resource = "branches"
	ResourceEmployees        Resource = "employees"
	ResourceServices         Resource = "services"
	ResourceBookingsPerMonth Resource = "bookings_per_month"
	ResourceCustomers        Resource = "customers"
)

var ValidResources = map[Resource]bool{
	ResourceBranches:         true,
	ResourceEmployees:        true,
	ResourceServices:         true,
	ResourceBookingsPerMonth: true,
	ResourceCustomers:        true,
}

// ParseResource normalizes and validates a resource name.
func ParseResource(value string) (Resource, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	resource := Resource(normalized)

	if !ValidResources[resource] {
		return "", fmt.Errorf("invalid resource: %s", value)
	}

	return resource, nil
}

func (r Resource) String() string {
	return string(r)
}

// ResourceLimits holds the per-plan caps for countable resources.
// A nil entry means unlimited.
type ResourceLimits struct {
	MaxBranches         *int64 `json:"max_branches"`
	MaxEmployees        *int64 `json:"max_employees"`
	MaxServices         *int64 `json:"max_services"`
	MaxBookingsPerMonth *int64 `json:"max_bookings_per_month"`
	MaxCustomers        *int64 `json:"max_customers"`
}

// Limit returns the cap for the given resource, or nil for unlimited.
func (l ResourceLimits) Limit(resource Resource) *int64 {
	switch resource {
	case ResourceBranches:
		return l.MaxBranches
	case ResourceEmployees:
		return l.MaxEmployees
	case ResourceServices:
		return l.MaxServices
	case ResourceBookingsPerMonth:
		return l.MaxBookingsPerMonth
	case ResourceCustomers:
		return l.MaxCustomers
	default:
		return nil
	}
}
