package workflow

// Trigger labels the action that causes a status transition. Triggers are
// recorded in progression history as the action type.
type Trigger string

const (
	TriggerSubmit          Trigger = "SUBMIT"
	TriggerAssignReviewer  Trigger = "ASSIGN_REVIEWER"
	TriggerApprove         Trigger = "APPROVE"
	TriggerReject          Trigger = "REJECT"
	TriggerResubmit        Trigger = "RESUBMIT"
	TriggerRequestPayment  Trigger = "REQUEST_PAYMENT"
	TriggerPaymentReceived Trigger = "PAYMENT_RECEIVED"
	TriggerProcess         Trigger = "PROCESS"
	TriggerSign            Trigger = "SIGN"
	TriggerIssue           Trigger = "ISSUE_CERTIFICATE"
	TriggerComplete        Trigger = "COMPLETE"
	TriggerClose           Trigger = "CLOSE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
