package enums

import "fmt"

// SelectionType says how an assortment box is filled.
type SelectionType string

const (
	SelectionTypeRandom     SelectionType = "RANDOM"
	SelectionTypePickAndMix SelectionType = "PICK_AND_MIX"
)

var validSelectionTypes = []SelectionType{
	SelectionTypeRandom,
	SelectionTypePickAndMix,
}

// String implements fmt.Stringer.
func (s SelectionType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SelectionType.
func (s SelectionType) IsValid() bool {
	for _, candidate := range validSelectionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSelectionType converts raw input into a SelectionType.
func ParseSelectionType(value string) (SelectionType, error) {
	for _, candidate := range validSelectionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid selection type %q", value)
}
