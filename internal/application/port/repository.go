package port

import (
	"context"
	"time"

	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// ApplicationRepository defines persistence operations for Application.
// Get methods return (nil, nil) when the row does not exist.
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id int64) (*entity.Application, error)
	GetByNumber(ctx context.Context, number string) (*entity.Application, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Application, error)

	// ListStalled returns unassigned applications sitting in one of the given
	// statuses, oldest first. Used by the assignment retry worker.
	ListStalled(ctx context.Context, statuses []workflow.Status, limit int) ([]*entity.Application, error)

	// TransitionStatus applies the status change and assignee swap only when the
	// stored status still equals from. Returns false when the guard rejects the
	// write (a concurrent transition won the race).
	TransitionStatus(ctx context.Context, id int64, from, to workflow.Status, assignee *int64, actor string) (bool, error)

	// SetStageDecision records an officer's approve/reject decision for a stage
	SetStageDecision(ctx context.Context, id int64, stage entity.StageCode, d entity.StageDecision) error

	SetSubmittedAt(ctx context.Context, id int64, t time.Time) error
	SetPaymentCompletedAt(ctx context.Context, id int64, t time.Time) error
	SetCertificateIssuedAt(ctx context.Context, id int64, t time.Time) error

	// OpenCountByOfficer returns, per officer, the number of applications the
	// officer is currently assigned to that are not in a terminal status.
	OpenCountByOfficer(ctx context.Context, officerIDs []int64) (map[int64]int, error)
}

// OfficerRepository defines persistence operations for Officer
type OfficerRepository interface {
	Create(ctx context.Context, officer *entity.Officer) error
	GetByID(ctx context.Context, id int64) (*entity.Officer, error)
	FindActiveByRole(ctx context.Context, role entity.OfficerRole) ([]*entity.Officer, error)
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, limit, offset int) ([]*entity.Officer, error)
}

// AssignmentHistoryRepository defines persistence for the append-only
// officer<->application binding log
type AssignmentHistoryRepository interface {
	Create(ctx context.Context, record *entity.AssignmentRecord) error
	GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.AssignmentRecord, error)
	Latest(ctx context.Context, applicationID int64) (*entity.AssignmentRecord, error)

	// LatestAssignmentTimes returns each officer's most recent assignment time.
	// Officers never assigned are absent from the result.
	LatestAssignmentTimes(ctx context.Context, officerIDs []int64) (map[int64]time.Time, error)
}

// ProgressionHistoryRepository defines persistence for the append-only
// status transition log
type ProgressionHistoryRepository interface {
	Create(ctx context.Context, record *entity.ProgressionRecord) error
	GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.ProgressionRecord, error)
}

// CertificateRepository defines persistence for issued-certificate records
type CertificateRepository interface {
	Create(ctx context.Context, cert *entity.Certificate) error
	GetByApplicationID(ctx context.Context, applicationID int64, kind string) (*entity.Certificate, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
