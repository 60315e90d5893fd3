package service

import (
	"context"
	"fmt"

	"github.com/yashturmbekar/pmcrms/internal/application/assignment"
	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// WorkflowStage is the read-model answer for "where is this application now"
type WorkflowStage struct {
	ApplicationID   int64           `json:"application_id"`
	CurrentStatus   domainwf.Status `json:"current_status"`
	StageNumber     int             `json:"stage_number"`
	TotalStages     int             `json:"total_stages"`
	AssignedOfficer *entity.Officer `json:"assigned_officer,omitempty"`
	CanProgress     bool            `json:"can_progress"`
	BlockedReason   string          `json:"blocked_reason,omitempty"`
}

// WorkflowHistory bundles both append-only trails for one application
type WorkflowHistory struct {
	ApplicationID int64                       `json:"application_id"`
	Progressions  []*entity.ProgressionRecord `json:"progressions"`
	Assignments   []*entity.AssignmentRecord  `json:"assignments"`
}

// QueryService serves workflow read models without mutating anything
type QueryService interface {
	GetWorkflowStage(ctx context.Context, applicationID int64) (*WorkflowStage, error)
	GetWorkflowHistory(ctx context.Context, applicationID int64) (*WorkflowHistory, error)

	// VerifyAssignmentConsistency cross-checks the cached assignee against the
	// latest assignment record and the role the current status demands
	VerifyAssignmentConsistency(ctx context.Context, applicationID int64) error
}

// autoProgressable marks statuses the engine can advance without waiting for
// an officer decision or an external fact
var autoProgressable = map[domainwf.Status]bool{
	domainwf.StatusSubmitted:         true,
	domainwf.StatusJEApproved:        true,
	domainwf.StatusAEApproved:        true,
	domainwf.StatusEE1Approved:       true,
	domainwf.StatusCE1Approved:       true,
	domainwf.StatusPaymentCompleted:  true,
	domainwf.StatusClerkProcessed:    true,
	domainwf.StatusEE2SignCompleted:  true,
	domainwf.StatusCertificateIssued: true,
}

type queryServiceImpl struct {
	apps         port.ApplicationRepository
	officers     port.OfficerRepository
	assignments  port.AssignmentHistoryRepository
	progressions port.ProgressionHistoryRepository
}

// NewQueryService creates the read-side service
func NewQueryService(
	apps port.ApplicationRepository,
	officers port.OfficerRepository,
	assignments port.AssignmentHistoryRepository,
	progressions port.ProgressionHistoryRepository,
) QueryService {
	return &queryServiceImpl{
		apps:         apps,
		officers:     officers,
		assignments:  assignments,
		progressions: progressions,
	}
}

func (s *queryServiceImpl) GetWorkflowStage(ctx context.Context, applicationID int64) (*WorkflowStage, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: id %d", workflow.ErrApplicationNotFound, applicationID)
	}

	stage := &WorkflowStage{
		ApplicationID: app.ID,
		CurrentStatus: app.Status,
		StageNumber:   app.Status.StageNumber(),
		TotalStages:   domainwf.TotalStages,
		CanProgress:   autoProgressable[app.Status],
	}

	if app.AssignedOfficerID != nil {
		officer, err := s.officers.GetByID(ctx, *app.AssignedOfficerID)
		if err != nil {
			return nil, fmt.Errorf("load assigned officer: %w", err)
		}
		stage.AssignedOfficer = officer
	}

	stage.BlockedReason = blockedReason(app.Status)
	return stage, nil
}

func (s *queryServiceImpl) GetWorkflowHistory(ctx context.Context, applicationID int64) (*WorkflowHistory, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: id %d", workflow.ErrApplicationNotFound, applicationID)
	}

	progressions, err := s.progressions.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load progression history: %w", err)
	}
	assignments, err := s.assignments.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load assignment history: %w", err)
	}

	return &WorkflowHistory{
		ApplicationID: applicationID,
		Progressions:  progressions,
		Assignments:   assignments,
	}, nil
}

func (s *queryServiceImpl) VerifyAssignmentConsistency(ctx context.Context, applicationID int64) error {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app == nil {
		return fmt.Errorf("%w: id %d", workflow.ErrApplicationNotFound, applicationID)
	}

	latest, err := s.assignments.Latest(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load latest assignment: %w", err)
	}

	if app.AssignedOfficerID == nil {
		return nil
	}
	if latest == nil {
		return fmt.Errorf("application %d has assignee %d but no assignment record",
			applicationID, *app.AssignedOfficerID)
	}
	if latest.OfficerID != *app.AssignedOfficerID {
		return fmt.Errorf("application %d assignee %d disagrees with latest assignment record %d",
			applicationID, *app.AssignedOfficerID, latest.OfficerID)
	}

	role, ok := assignment.RoleForStatus(app.Status, app.PositionCategory)
	if !ok {
		return fmt.Errorf("application %d holds assignee %d in non-review status %s",
			applicationID, *app.AssignedOfficerID, app.Status)
	}
	officer, err := s.officers.GetByID(ctx, *app.AssignedOfficerID)
	if err != nil {
		return fmt.Errorf("load assigned officer: %w", err)
	}
	if officer == nil {
		return fmt.Errorf("application %d assigned to unknown officer %d", applicationID, *app.AssignedOfficerID)
	}
	if officer.Role != role {
		return fmt.Errorf("application %d in %s requires role %s, assignee %d holds %s",
			applicationID, app.Status, role, officer.ID, officer.Role)
	}
	return nil
}

func blockedReason(status domainwf.Status) string {
	switch {
	case status == domainwf.StatusCompleted:
		return "workflow completed"
	case status == domainwf.StatusRejected:
		return "application closed"
	case status == domainwf.StatusPaymentPending:
		return "awaiting payment"
	case status.IsRejection():
		return "awaiting resubmission"
	case status == domainwf.StatusDraft:
		return "awaiting submission"
	case !autoProgressable[status]:
		return "awaiting officer action"
	}
	return ""
}
