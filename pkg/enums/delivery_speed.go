package enums

import "strings"

// DeliverySpeed classifies a shipping option. Only standard-speed options
// participate in the free-shipping threshold.
type DeliverySpeed string

const (
	DeliverySpeedStandard DeliverySpeed = "standard"
	DeliverySpeedRegular  DeliverySpeed = "regular"
	DeliverySpeedExpress  DeliverySpeed = "express"
	DeliverySpeedNextDay  DeliverySpeed = "next_day"
)

// String implements fmt.Stringer.
func (d DeliverySpeed) String() string {
	return string(d)
}

// QualifiesForFreeShipping reports whether the speed is eligible for the
// subtotal-based free shipping policy. Both "standard" and "regular" label
// the default tier in historic data.
func (d DeliverySpeed) QualifiesForFreeShipping() bool {
	switch DeliverySpeed(strings.ToLower(string(d))) {
	case DeliverySpeedStandard, DeliverySpeedRegular:
		return true
	default:
		return false
	}
}
