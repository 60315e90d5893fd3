package workflow

// Status represents an application's position in the permit approval lifecycle
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"

	StatusJEReviewPending Status = "JE_REVIEW_PENDING"
	StatusJEApproved      Status = "JE_APPROVED"
	StatusJERejected      Status = "JE_REJECTED"

	StatusAEReviewPending Status = "AE_REVIEW_PENDING"
	StatusAEApproved      Status = "AE_APPROVED"
	StatusAERejected      Status = "AE_REJECTED"

	StatusEE1ReviewPending Status = "EE1_REVIEW_PENDING"
	StatusEE1Approved      Status = "EE1_APPROVED"
	StatusEE1Rejected      Status = "EE1_REJECTED"

	StatusCE1ReviewPending Status = "CE1_REVIEW_PENDING"
	StatusCE1Approved      Status = "CE1_APPROVED"
	StatusCE1Rejected      Status = "CE1_REJECTED"

	StatusPaymentPending   Status = "PAYMENT_PENDING"
	StatusPaymentCompleted Status = "PAYMENT_COMPLETED"

	StatusClerkPending   Status = "CLERK_PENDING"
	StatusClerkProcessed Status = "CLERK_PROCESSED"

	StatusEE2SignPending   Status = "EE2_SIGN_PENDING"
	StatusEE2SignCompleted Status = "EE2_SIGN_COMPLETED"

	StatusCE2FinalPending Status = "CE2_FINAL_PENDING"

	StatusCertificateIssued Status = "CERTIFICATE_ISSUED"
	StatusCompleted         Status = "COMPLETED"
	StatusRejected          Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusDraft:             true,
	StatusSubmitted:         true,
	StatusJEReviewPending:   true,
	StatusJEApproved:        true,
	StatusJERejected:        true,
	StatusAEReviewPending:   true,
	StatusAEApproved:        true,
	StatusAERejected:        true,
	StatusEE1ReviewPending:  true,
	StatusEE1Approved:       true,
	StatusEE1Rejected:       true,
	StatusCE1ReviewPending:  true,
	StatusCE1Approved:       true,
	StatusCE1Rejected:       true,
	StatusPaymentPending:    true,
	StatusPaymentCompleted:  true,
	StatusClerkPending:      true,
	StatusClerkProcessed:    true,
	StatusEE2SignPending:    true,
	StatusEE2SignCompleted:  true,
	StatusCE2FinalPending:   true,
	StatusCertificateIssued: true,
	StatusCompleted:         true,
	StatusRejected:          true,
}

var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusRejected:  true,
}

// rejectionStatuses loop an application back to SUBMITTED for resubmission
var rejectionStatuses = map[Status]bool{
	StatusJERejected:  true,
	StatusAERejected:  true,
	StatusEE1Rejected: true,
	StatusCE1Rejected: true,
}

// stageNumbers positions each status on the officer hand-off ladder, used for
// progress display. Approved/rejected statuses share the stage of their review.
var stageNumbers = map[Status]int{
	StatusDraft:             1,
	StatusSubmitted:         2,
	StatusJEReviewPending:   3,
	StatusJEApproved:        3,
	StatusJERejected:        3,
	StatusAEReviewPending:   4,
	StatusAEApproved:        4,
	StatusAERejected:        4,
	StatusEE1ReviewPending:  5,
	StatusEE1Approved:       5,
	StatusEE1Rejected:       5,
	StatusCE1ReviewPending:  6,
	StatusCE1Approved:       6,
	StatusCE1Rejected:       6,
	StatusPaymentPending:    7,
	StatusPaymentCompleted:  7,
	StatusClerkPending:      8,
	StatusClerkProcessed:    8,
	StatusEE2SignPending:    9,
	StatusEE2SignCompleted:  9,
	StatusCE2FinalPending:   10,
	StatusCertificateIssued: 11,
	StatusCompleted:         11,
	StatusRejected:          2,
}

// TotalStages is the number of hand-off stages shown to applicants
const TotalStages = 11

// IsTerminal returns true if no further transitions are allowed from the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a member of the permit lifecycle
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsRejection returns true for per-stage rejection statuses that re-enter the
// resubmission loop (the terminal REJECTED close-out is not one of them)
func (s Status) IsRejection() bool {
	return rejectionStatuses[s]
}

// StageNumber returns the 1-based stage this status belongs to
func (s Status) StageNumber() int {
	return stageNumbers[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
