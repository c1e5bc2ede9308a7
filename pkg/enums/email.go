package enums

import "fmt"

// EmailKind names the transactional email templates the shop sends.
type EmailKind string

const (
	EmailKindOrderPaid  EmailKind = "order_paid"
	EmailKindNewsletter EmailKind = "newsletter"
	EmailKindContact    EmailKind = "contact"
)

var validEmailKinds = []EmailKind{
	EmailKindOrderPaid,
	EmailKindNewsletter,
	EmailKindContact,
}

// String implements fmt.Stringer.
func (e EmailKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EmailKind.
func (e EmailKind) IsValid() bool {
	for _, candidate := range validEmailKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEmailKind converts raw input into an EmailKind.
func ParseEmailKind(value string) (EmailKind, error) {
	for _, candidate := range validEmailKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email kind %q", value)
}

// EmailStatus tracks a single delivery attempt.
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// String implements fmt.Stringer.
func (e EmailStatus) String() string {
	return string(e)
}

// EmailTargetKind is the closed set of entities an email log row may reference.
type EmailTargetKind string

const (
	EmailTargetOrder EmailTargetKind = "order"
	EmailTargetLead  EmailTargetKind = "lead"
)

// String implements fmt.Stringer.
func (e EmailTargetKind) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EmailTargetKind.
func (e EmailTargetKind) IsValid() bool {
	return e == EmailTargetOrder || e == EmailTargetLead
}
