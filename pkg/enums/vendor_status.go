package enums

import "fmt"

// VendorStatus maps to the vendor_status enum in Postgres.
type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "active"
	VendorStatusArchived VendorStatus = "archived"
)

var validVendorStatuses = []VendorStatus{
	VendorStatusActive,
	VendorStatusArchived,
}

// IsValid reports whether the value is a known VendorStatus.
func (v VendorStatus) IsValid() bool {
	for _, candidate := range validVendorStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorStatus converts raw input into a VendorStatus.
func ParseVendorStatus(value string) (VendorStatus, error) {
	for _, candidate := range validVendorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor status %q", value)
}
