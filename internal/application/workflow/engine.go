package workflow

import (
	"context"
	"errors"

	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

var (
	// ErrApplicationNotFound is returned when the application does not exist
	ErrApplicationNotFound = errors.New("application not found")

	// ErrInvalidStageForProgression is returned when the application is not in
	// the expected status for the boundary, including when a concurrent
	// transition won the race. Re-invoking an already-progressed boundary is a
	// no-op failure, never a crash.
	ErrInvalidStageForProgression = errors.New("application is not at the expected stage")

	// ErrNoOfficerAvailable is returned when no active officer holds the role
	// the boundary routes to. The application is left unchanged so the
	// operation can be retried once an officer becomes active.
	ErrNoOfficerAvailable = errors.New("no officer available for assignment")
)

// ResubmitPolicy decides where a resubmitted application re-enters review
type ResubmitPolicy string

const (
	// ResubmitRestart sends resubmissions back to junior-engineer review
	ResubmitRestart ResubmitPolicy = "RESTART"
	// ResubmitResume re-enters the stage whose officer rejected
	ResubmitResume ResubmitPolicy = "RESUME"
)

// ProgressionResult reports the outcome of one boundary operation
type ProgressionResult struct {
	Success           bool             `json:"success"`
	NewStatus         domainwf.Status  `json:"new_status"`
	AssignedOfficerID *int64           `json:"assigned_officer_id,omitempty"`
	Message           string           `json:"message,omitempty"`
}

// Engine orchestrates stage-to-stage hand-offs: it validates the current
// status, selects the next officer, applies the transition through the status
// machine and persists assignment plus progression history atomically.
// Notification and document side effects run decoupled after the commit and
// never roll a transition back.
type Engine interface {
	// SubmitToJuniorEngineer routes a freshly submitted application to review
	SubmitToJuniorEngineer(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)

	// Per-boundary progressions along the review ladder
	ProgressToAssistantEngineer(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)
	ProgressToExecutiveEngineerStage1(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)
	ProgressToCityEngineer(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)
	ProgressToPayment(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)
	ProgressToClerk(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)
	ProgressToExecutiveEngineerSignature(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)
	ProgressToCityEngineerFinalSignature(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)

	// ConfirmPayment consumes the gateway's payment-completed fact and routes
	// the application onward to the clerk
	ConfirmPayment(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)

	// CompleteSignature records the executive engineer's digital signature
	CompleteSignature(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)

	// IssueCertificate records the city engineer's final approval and issues
	// the occupancy certificate
	IssueCertificate(ctx context.Context, applicationID int64, actor, remarks string) (*ProgressionResult, error)

	// CompleteWorkflow terminates a certificate-issued application
	CompleteWorkflow(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)

	// ResubmitAfterRejection loops a rejected application back into review
	// according to the configured resubmission policy
	ResubmitAfterRejection(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error)

	// Transition applies one officer- or admin-triggered transition without
	// reassignment. Overrides still pass the transition table and are recorded
	// as manually triggered history.
	Transition(ctx context.Context, applicationID int64, from, to domainwf.Status, actor, remarks string) (*ProgressionResult, error)

	// Machine exposes the transition table for read-side queries
	Machine() *domainwf.Machine
}
