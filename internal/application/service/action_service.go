package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

var (
	// ErrWrongStage is returned when the application is not pending for the
	// acting officer's role
	ErrWrongStage = errors.New("application is not pending at this stage")

	// ErrNotAssignee is returned when the acting officer is not the one
	// currently assigned to the application
	ErrNotAssignee = errors.New("officer is not the current assignee")

	// ErrMissingReason is returned when a rejection carries no reason
	ErrMissingReason = errors.New("rejection reason is required")
)

// ActionResult is the structured outcome returned to every action caller
type ActionResult struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	ApplicationID int64           `json:"application_id"`
	NewStatus     domainwf.Status `json:"new_status"`
}

// ActionService validates and records per-role officer decisions, then hands
// the application to the progression engine. Validation failures mutate
// nothing; side effects never influence the returned result.
type ActionService interface {
	ApproveJuniorEngineer(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error)
	RejectJuniorEngineer(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error)

	ApproveAssistantEngineer(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error)
	RejectAssistantEngineer(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error)

	ApproveExecutiveEngineerStage1(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error)
	RejectExecutiveEngineerStage1(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error)

	ApproveCityEngineerStage1(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error)
	RejectCityEngineerStage1(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error)

	// ProcessClerk records clerk processing and routes the application to the
	// executive engineer for digital signature
	ProcessClerk(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error)

	// CompleteExecutiveSignature consumes the signed fact for the assigned
	// executive engineer and routes onward to the city engineer
	CompleteExecutiveSignature(ctx context.Context, applicationID, officerID int64) (*ActionResult, error)

	// ApproveCityEngineerFinal issues the certificate and completes the workflow
	ApproveCityEngineerFinal(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error)
}

// progressFunc invokes the follow-on engine boundary after an approval
type progressFunc func(ctx context.Context, applicationID int64, actor string) (*workflow.ProgressionResult, error)

// stageSpec binds one review stage's statuses and bookkeeping together
type stageSpec struct {
	pending  domainwf.Status
	approved domainwf.Status
	rejected domainwf.Status
	stage    entity.StageCode
}

type actionServiceImpl struct {
	apps   port.ApplicationRepository
	engine workflow.Engine
	logger *zap.Logger
}

// NewActionService creates the per-role action service
func NewActionService(apps port.ApplicationRepository, engine workflow.Engine, logger *zap.Logger) ActionService {
	return &actionServiceImpl{
		apps:   apps,
		engine: engine,
		logger: logger,
	}
}

var (
	specJE = stageSpec{domainwf.StatusJEReviewPending, domainwf.StatusJEApproved, domainwf.StatusJERejected, entity.StageJE}
	specAE = stageSpec{domainwf.StatusAEReviewPending, domainwf.StatusAEApproved, domainwf.StatusAERejected, entity.StageAE}

	specEE1 = stageSpec{domainwf.StatusEE1ReviewPending, domainwf.StatusEE1Approved, domainwf.StatusEE1Rejected, entity.StageEE1}
	specCE1 = stageSpec{domainwf.StatusCE1ReviewPending, domainwf.StatusCE1Approved, domainwf.StatusCE1Rejected, entity.StageCE1}
)

func (s *actionServiceImpl) ApproveJuniorEngineer(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error) {
	return s.approve(ctx, applicationID, officerID, remarks, specJE, s.engine.ProgressToAssistantEngineer)
}

func (s *actionServiceImpl) RejectJuniorEngineer(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error) {
	return s.reject(ctx, applicationID, officerID, reason, specJE)
}

func (s *actionServiceImpl) ApproveAssistantEngineer(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error) {
	return s.approve(ctx, applicationID, officerID, remarks, specAE, s.engine.ProgressToExecutiveEngineerStage1)
}

func (s *actionServiceImpl) RejectAssistantEngineer(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error) {
	return s.reject(ctx, applicationID, officerID, reason, specAE)
}

func (s *actionServiceImpl) ApproveExecutiveEngineerStage1(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error) {
	return s.approve(ctx, applicationID, officerID, remarks, specEE1, s.engine.ProgressToCityEngineer)
}

func (s *actionServiceImpl) RejectExecutiveEngineerStage1(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error) {
	return s.reject(ctx, applicationID, officerID, reason, specEE1)
}

func (s *actionServiceImpl) ApproveCityEngineerStage1(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error) {
	return s.approve(ctx, applicationID, officerID, remarks, specCE1, s.engine.ProgressToPayment)
}

func (s *actionServiceImpl) RejectCityEngineerStage1(ctx context.Context, applicationID, officerID int64, reason string) (*ActionResult, error) {
	return s.reject(ctx, applicationID, officerID, reason, specCE1)
}

func (s *actionServiceImpl) ProcessClerk(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error) {
	spec := stageSpec{
		pending:  domainwf.StatusClerkPending,
		approved: domainwf.StatusClerkProcessed,
		stage:    entity.StageClerk,
	}
	return s.approve(ctx, applicationID, officerID, remarks, spec, s.engine.ProgressToExecutiveEngineerSignature)
}

func (s *actionServiceImpl) CompleteExecutiveSignature(ctx context.Context, applicationID, officerID int64) (*ActionResult, error) {
	if _, err := s.validate(ctx, applicationID, officerID, domainwf.StatusEE2SignPending); err != nil {
		return nil, err
	}
	if err := s.recordDecision(ctx, applicationID, officerID, entity.StageEE2, true, "digital signature completed"); err != nil {
		return nil, err
	}

	actor := actorFor(officerID)
	if _, err := s.engine.CompleteSignature(ctx, applicationID, actor); err != nil {
		return nil, err
	}

	return s.routeOnward(ctx, applicationID, officerID, entity.StageEE2,
		domainwf.StatusEE2SignCompleted, s.engine.ProgressToCityEngineerFinalSignature)
}

func (s *actionServiceImpl) ApproveCityEngineerFinal(ctx context.Context, applicationID, officerID int64, remarks string) (*ActionResult, error) {
	if _, err := s.validate(ctx, applicationID, officerID, domainwf.StatusCE2FinalPending); err != nil {
		return nil, err
	}
	if err := s.recordDecision(ctx, applicationID, officerID, entity.StageCE2, true, remarks); err != nil {
		return nil, err
	}

	actor := actorFor(officerID)
	if _, err := s.engine.IssueCertificate(ctx, applicationID, actor, remarks); err != nil {
		return nil, err
	}

	return s.routeOnward(ctx, applicationID, officerID, entity.StageCE2,
		domainwf.StatusCertificateIssued, s.engine.CompleteWorkflow)
}

// approve records the stage decision and advances the application: first the
// manual approval hop, then the automatic hand-off to the next stage. A
// routing failure after a committed approval is retryable, not fatal.
func (s *actionServiceImpl) approve(ctx context.Context, applicationID, officerID int64, remarks string, spec stageSpec, next progressFunc) (*ActionResult, error) {
	if _, err := s.validate(ctx, applicationID, officerID, spec.pending); err != nil {
		return nil, err
	}
	if err := s.recordDecision(ctx, applicationID, officerID, spec.stage, true, remarks); err != nil {
		return nil, err
	}

	if _, err := s.engine.Transition(ctx, applicationID, spec.pending, spec.approved, actorFor(officerID), remarks); err != nil {
		return nil, err
	}

	return s.routeOnward(ctx, applicationID, officerID, spec.stage, spec.approved, next)
}

func (s *actionServiceImpl) recordDecision(ctx context.Context, applicationID, officerID int64, stage entity.StageCode, approved bool, remarks string) error {
	now := time.Now()
	decision := entity.StageDecision{
		Approved: &approved,
		Remarks:  remarks,
		ActedBy:  &officerID,
		ActedAt:  &now,
	}
	if err := s.apps.SetStageDecision(ctx, applicationID, stage, decision); err != nil {
		return fmt.Errorf("record stage decision: %w", err)
	}
	return nil
}

// routeOnward fires the automatic hand-off after a committed manual hop. A
// routing failure after a committed approval is retryable, not fatal: the
// partial result reports the status the manual hop reached.
func (s *actionServiceImpl) routeOnward(ctx context.Context, applicationID, officerID int64, stage entity.StageCode, recorded domainwf.Status, next progressFunc) (*ActionResult, error) {
	result, err := next(ctx, applicationID, actorFor(officerID))
	if err != nil {
		s.logger.Warn("Approval recorded but onward routing failed",
			zap.Int64("application_id", applicationID),
			zap.Int64("officer_id", officerID),
			zap.String("stage", string(stage)),
			zap.Error(err))
		return &ActionResult{
			Success:       false,
			Message:       "approval recorded; onward assignment pending retry",
			ApplicationID: applicationID,
			NewStatus:     recorded,
		}, err
	}

	return &ActionResult{
		Success:       true,
		Message:       fmt.Sprintf("approved; application moved to %s", result.NewStatus),
		ApplicationID: applicationID,
		NewStatus:     result.NewStatus,
	}, nil
}

// reject records the rejection and fires the role-specific rejection
// transition, which the status machine only allows back toward resubmission
func (s *actionServiceImpl) reject(ctx context.Context, applicationID, officerID int64, reason string, spec stageSpec) (*ActionResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingReason
	}

	if _, err := s.validate(ctx, applicationID, officerID, spec.pending); err != nil {
		return nil, err
	}
	if err := s.recordDecision(ctx, applicationID, officerID, spec.stage, false, reason); err != nil {
		return nil, err
	}

	if _, err := s.engine.Transition(ctx, applicationID, spec.pending, spec.rejected, actorFor(officerID), reason); err != nil {
		return nil, err
	}

	return &ActionResult{
		Success:       true,
		Message:       "application rejected; awaiting resubmission",
		ApplicationID: applicationID,
		NewStatus:     spec.rejected,
	}, nil
}

// validate enforces the three caller-facing guards: the application exists,
// it is pending at the acting officer's stage, and the officer owns it
func (s *actionServiceImpl) validate(ctx context.Context, applicationID, officerID int64, pending domainwf.Status) (*entity.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, fmt.Errorf("%w: id %d", workflow.ErrApplicationNotFound, applicationID)
	}
	if app.Status != pending {
		return nil, fmt.Errorf("%w: application %d is %s, expected %s",
			ErrWrongStage, applicationID, app.Status, pending)
	}
	if app.AssignedOfficerID == nil || *app.AssignedOfficerID != officerID {
		return nil, fmt.Errorf("%w: application %d", ErrNotAssignee, applicationID)
	}
	return app, nil
}

func actorFor(officerID int64) string {
	return fmt.Sprintf("officer:%d", officerID)
}
