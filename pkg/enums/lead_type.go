package enums

import "fmt"

// LeadType classifies inbound marketing leads.
type LeadType string

const (
	LeadTypeNewsletter  LeadType = "newsletter"
	LeadTypeContactForm LeadType = "contact_form"
)

var validLeadTypes = []LeadType{
	LeadTypeNewsletter,
	LeadTypeContactForm,
}

// String implements fmt.Stringer.
func (l LeadType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LeadType.
func (l LeadType) IsValid() bool {
	for _, candidate := range validLeadTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLeadType converts raw input into a LeadType.
func ParseLeadType(value string) (LeadType, error) {
	for _, candidate := range validLeadTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead type %q", value)
}
