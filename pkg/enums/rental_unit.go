package enums

import "fmt"

// RentalUnit identifies the billing granularity of a rental period.
type RentalUnit string

const (
	RentalUnitHour  RentalUnit = "hour"
	RentalUnitDay   RentalUnit = "day"
	RentalUnitWeek  RentalUnit = "week"
	RentalUnitMonth RentalUnit = "month"
	RentalUnitYear  RentalUnit = "year"
)

var validRentalUnits = []RentalUnit{
	RentalUnitHour,
	RentalUnitDay,
	RentalUnitWeek,
	RentalUnitMonth,
	RentalUnitYear,
}

// String implements fmt.Stringer.
func (r RentalUnit) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RentalUnit.
func (r RentalUnit) IsValid() bool {
	for _, candidate := range validRentalUnits {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRentalUnit converts raw input into a RentalUnit.
func ParseRentalUnit(value string) (RentalUnit, error) {
	for _, candidate := range validRentalUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental unit %q", value)
}
