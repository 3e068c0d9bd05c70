package enums

import "fmt"

// DeliveryChargeType identifies how a vendor bills for delivery.
type DeliveryChargeType string

const (
	DeliveryChargeTypeFree  DeliveryChargeType = "free"
	DeliveryChargeTypeFlat  DeliveryChargeType = "flat"
	DeliveryChargeTypePerKm DeliveryChargeType = "per_km"
)

var validDeliveryChargeTypes = []DeliveryChargeType{
	DeliveryChargeTypeFree,
	DeliveryChargeTypeFlat,
	DeliveryChargeTypePerKm,
}

// String implements fmt.Stringer.
func (d DeliveryChargeType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryChargeType.
func (d DeliveryChargeType) IsValid() bool {
	for _, candidate := range validDeliveryChargeTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryChargeType converts raw input into a DeliveryChargeType.
func ParseDeliveryChargeType(value string) (DeliveryChargeType, error) {
	for _, candidate := range validDeliveryChargeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery charge type %q", value)
}
