package workflow

import (
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// BuildPermitMachine assembles the permit lifecycle transition table. The
// returned machine is stateless and shared; it is the single source of truth
// for transition legality, administrative overrides included.
func BuildPermitMachine() *domainwf.Machine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatusDraft).
		Permit(domainwf.TriggerSubmit, domainwf.StatusSubmitted)

	// SUBMITTED routes to junior-engineer review on first submission; the
	// remaining review edges serve the resume resubmission policy. The
	// terminal close-out is the administrative abandonment path.
	builder.Configure(domainwf.StatusSubmitted).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusJEReviewPending).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusAEReviewPending).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusEE1ReviewPending).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusCE1ReviewPending).
		Permit(domainwf.TriggerClose, domainwf.StatusRejected)

	builder.Configure(domainwf.StatusJEReviewPending).
		Permit(domainwf.TriggerApprove, domainwf.StatusJEApproved).
		Permit(domainwf.TriggerReject, domainwf.StatusJERejected)
	builder.Configure(domainwf.StatusJEApproved).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusAEReviewPending)
	builder.Configure(domainwf.StatusJERejected).
		Permit(domainwf.TriggerResubmit, domainwf.StatusSubmitted)

	builder.Configure(domainwf.StatusAEReviewPending).
		Permit(domainwf.TriggerApprove, domainwf.StatusAEApproved).
		Permit(domainwf.TriggerReject, domainwf.StatusAERejected)
	builder.Configure(domainwf.StatusAEApproved).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusEE1ReviewPending)
	builder.Configure(domainwf.StatusAERejected).
		Permit(domainwf.TriggerResubmit, domainwf.StatusSubmitted)

	builder.Configure(domainwf.StatusEE1ReviewPending).
		Permit(domainwf.TriggerApprove, domainwf.StatusEE1Approved).
		Permit(domainwf.TriggerReject, domainwf.StatusEE1Rejected)
	builder.Configure(domainwf.StatusEE1Approved).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusCE1ReviewPending)
	builder.Configure(domainwf.StatusEE1Rejected).
		Permit(domainwf.TriggerResubmit, domainwf.StatusSubmitted)

	builder.Configure(domainwf.StatusCE1ReviewPending).
		Permit(domainwf.TriggerApprove, domainwf.StatusCE1Approved).
		Permit(domainwf.TriggerReject, domainwf.StatusCE1Rejected)
	builder.Configure(domainwf.StatusCE1Approved).
		Permit(domainwf.TriggerRequestPayment, domainwf.StatusPaymentPending)
	builder.Configure(domainwf.StatusCE1Rejected).
		Permit(domainwf.TriggerResubmit, domainwf.StatusSubmitted)

	builder.Configure(domainwf.StatusPaymentPending).
		Permit(domainwf.TriggerPaymentReceived, domainwf.StatusPaymentCompleted)
	builder.Configure(domainwf.StatusPaymentCompleted).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusClerkPending)

	builder.Configure(domainwf.StatusClerkPending).
		Permit(domainwf.TriggerProcess, domainwf.StatusClerkProcessed)
	builder.Configure(domainwf.StatusClerkProcessed).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusEE2SignPending)

	builder.Configure(domainwf.StatusEE2SignPending).
		Permit(domainwf.TriggerSign, domainwf.StatusEE2SignCompleted)
	builder.Configure(domainwf.StatusEE2SignCompleted).
		Permit(domainwf.TriggerAssignReviewer, domainwf.StatusCE2FinalPending)

	builder.Configure(domainwf.StatusCE2FinalPending).
		Permit(domainwf.TriggerIssue, domainwf.StatusCertificateIssued)
	builder.Configure(domainwf.StatusCertificateIssued).
		Permit(domainwf.TriggerComplete, domainwf.StatusCompleted)

	// COMPLETED and REJECTED are terminal, no outgoing edges

	return builder.Build()
}
