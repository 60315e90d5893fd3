package event

// Type identifies the type of domain event
type Type string

const (
	TypeApplicationSubmitted Type = "application.submitted"
	TypeStatusChanged        Type = "application.status_changed"
	TypeStageRejected        Type = "application.stage_rejected"
	TypePaymentCompleted     Type = "payment.completed"
	TypeCertificateIssued    Type = "certificate.issued"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationSubmitted,
		TypeStatusChanged,
		TypeStageRejected,
		TypePaymentCompleted,
		TypeCertificateIssued:
		return true
	default:
		return false
	}
}
