package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/assignment"
	"github.com/yashturmbekar/pmcrms/internal/application/dispatcher"
	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/event"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// boundary describes one stage hand-off: the expected pre-condition status,
// the target status, and the stage role a new assignee must hold (empty when
// the boundary assigns nobody).
type boundary struct {
	from    domainwf.Status
	to      domainwf.Status
	stage   assignment.StageRole
	trigger domainwf.Trigger
}

var (
	boundaryToJE = boundary{domainwf.StatusSubmitted, domainwf.StatusJEReviewPending, assignment.StageRoleJunior, domainwf.TriggerAssignReviewer}
	boundaryToAE = boundary{domainwf.StatusJEApproved, domainwf.StatusAEReviewPending, assignment.StageRoleAssistant, domainwf.TriggerAssignReviewer}

	boundaryToEE1 = boundary{domainwf.StatusAEApproved, domainwf.StatusEE1ReviewPending, assignment.StageRoleExecutive, domainwf.TriggerAssignReviewer}
	boundaryToCE1 = boundary{domainwf.StatusEE1Approved, domainwf.StatusCE1ReviewPending, assignment.StageRoleCity, domainwf.TriggerAssignReviewer}

	boundaryToPayment     = boundary{domainwf.StatusCE1Approved, domainwf.StatusPaymentPending, "", domainwf.TriggerRequestPayment}
	boundaryPaymentFact   = boundary{domainwf.StatusPaymentPending, domainwf.StatusPaymentCompleted, "", domainwf.TriggerPaymentReceived}
	boundaryToClerk       = boundary{domainwf.StatusPaymentCompleted, domainwf.StatusClerkPending, assignment.StageRoleClerk, domainwf.TriggerAssignReviewer}
	boundaryToEE2         = boundary{domainwf.StatusClerkProcessed, domainwf.StatusEE2SignPending, assignment.StageRoleExecutive, domainwf.TriggerAssignReviewer}
	boundarySignComplete  = boundary{domainwf.StatusEE2SignPending, domainwf.StatusEE2SignCompleted, "", domainwf.TriggerSign}
	boundaryToCE2         = boundary{domainwf.StatusEE2SignCompleted, domainwf.StatusCE2FinalPending, assignment.StageRoleCity, domainwf.TriggerAssignReviewer}
	boundaryIssue         = boundary{domainwf.StatusCE2FinalPending, domainwf.StatusCertificateIssued, "", domainwf.TriggerIssue}
	boundaryCompletion    = boundary{domainwf.StatusCertificateIssued, domainwf.StatusCompleted, "", domainwf.TriggerComplete}
)

type engineImpl struct {
	machine      *domainwf.Machine
	apps         port.ApplicationRepository
	assignments  port.AssignmentHistoryRepository
	progressions port.ProgressionHistoryRepository
	selector     assignment.Selector
	tx           port.TransactionManager
	dispatcher   dispatcher.Dispatcher
	logger       *zap.Logger

	strategy       assignment.Strategy
	resubmitPolicy ResubmitPolicy
}

// EngineOption configures the progression engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for post-commit side effects
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithStrategy sets the officer selection strategy
func WithStrategy(s assignment.Strategy) EngineOption {
	return func(e *engineImpl) {
		e.strategy = s
	}
}

// WithResubmitPolicy sets where resubmitted applications re-enter review
func WithResubmitPolicy(p ResubmitPolicy) EngineOption {
	return func(e *engineImpl) {
		e.resubmitPolicy = p
	}
}

// NewEngine creates a progression engine
func NewEngine(
	apps port.ApplicationRepository,
	assignments port.AssignmentHistoryRepository,
	progressions port.ProgressionHistoryRepository,
	selector assignment.Selector,
	tx port.TransactionManager,
	logger *zap.Logger,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		machine:        BuildPermitMachine(),
		apps:           apps,
		assignments:    assignments,
		progressions:   progressions,
		selector:       selector,
		tx:             tx,
		logger:         logger,
		strategy:       assignment.StrategyRandom,
		resubmitPolicy: ResubmitRestart,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *engineImpl) Machine() *domainwf.Machine {
	return e.machine
}

func (e *engineImpl) SubmitToJuniorEngineer(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToJE, actor, "", true)
}

func (e *engineImpl) ProgressToAssistantEngineer(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToAE, actor, "", true)
}

func (e *engineImpl) ProgressToExecutiveEngineerStage1(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToEE1, actor, "", true)
}

func (e *engineImpl) ProgressToCityEngineer(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToCE1, actor, "", true)
}

func (e *engineImpl) ProgressToPayment(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToPayment, actor, "awaiting payment", true)
}

func (e *engineImpl) ProgressToClerk(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToClerk, actor, "", true)
}

func (e *engineImpl) ProgressToExecutiveEngineerSignature(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToEE2, actor, "", true)
}

func (e *engineImpl) ProgressToCityEngineerFinalSignature(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryToCE2, actor, "", true)
}

// CompleteSignature consumes the executive engineer's signed fact. The
// follow-on hand-off to the city engineer is a separate boundary.
func (e *engineImpl) CompleteSignature(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundarySignComplete, actor, "digital signature completed", false)
}

// IssueCertificate records the city engineer's final approval as an issued
// certificate
func (e *engineImpl) IssueCertificate(ctx context.Context, applicationID int64, actor, remarks string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryIssue, actor, remarks, false)
}

func (e *engineImpl) CompleteWorkflow(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	return e.progress(ctx, applicationID, boundaryCompletion, actor, "workflow completed", true)
}

// ConfirmPayment consumes the payment-completed fact. The fact itself is
// durable once committed; a failure routing onward to the clerk is logged and
// retried via ProgressToClerk rather than failing the confirmation.
func (e *engineImpl) ConfirmPayment(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	app, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != boundaryPaymentFact.from {
		return nil, fmt.Errorf("%w: application %d is %s, expected %s",
			ErrInvalidStageForProgression, applicationID, app.Status, boundaryPaymentFact.from)
	}

	result, err := e.apply(ctx, app, boundaryPaymentFact.to, nil, boundaryPaymentFact.trigger, actor, "payment confirmed by gateway", true)
	if err != nil {
		return nil, err
	}

	officer, err := e.selectFor(ctx, app, boundaryToClerk.stage)
	if err != nil {
		e.logger.Warn("Payment recorded but clerk assignment is pending",
			zap.Int64("application_id", applicationID), zap.Error(err))
		result.Message = "payment recorded; clerk assignment pending retry"
		return result, nil
	}

	clerkResult, err := e.apply(ctx, app, boundaryToClerk.to, officer, boundaryToClerk.trigger, actor, "", true)
	if err != nil {
		e.logger.Warn("Payment recorded but clerk routing failed",
			zap.Int64("application_id", applicationID), zap.Error(err))
		result.Message = "payment recorded; clerk routing pending retry"
		return result, nil
	}
	return clerkResult, nil
}

func (e *engineImpl) ResubmitAfterRejection(ctx context.Context, applicationID int64, actor string) (*ProgressionResult, error) {
	app, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.IsRejection() {
		return nil, fmt.Errorf("%w: application %d is %s, expected a rejection status",
			ErrInvalidStageForProgression, applicationID, app.Status)
	}

	target, stage := e.resubmitTarget(app.Status)

	// Select before mutating anything: a missing officer must leave the
	// application in its rejection status for a later retry.
	officer, err := e.selectFor(ctx, app, stage)
	if err != nil {
		return nil, err
	}

	if _, err := e.apply(ctx, app, domainwf.StatusSubmitted, nil, domainwf.TriggerResubmit, actor, "resubmitted after rejection", false); err != nil {
		return nil, err
	}

	return e.apply(ctx, app, target, officer, domainwf.TriggerAssignReviewer, actor, "", true)
}

func (e *engineImpl) Transition(ctx context.Context, applicationID int64, from, to domainwf.Status, actor, remarks string) (*ProgressionResult, error) {
	app, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != from {
		return nil, fmt.Errorf("%w: application %d is %s, expected %s",
			ErrInvalidStageForProgression, applicationID, app.Status, from)
	}

	trigger, ok := e.machine.TriggerFor(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", domainwf.ErrIllegalTransition, from, to)
	}

	return e.apply(ctx, app, to, nil, trigger, actor, remarks, false)
}

// resubmitTarget maps a rejection status to the review stage a resubmission
// re-enters under the configured policy
func (e *engineImpl) resubmitTarget(rejected domainwf.Status) (domainwf.Status, assignment.StageRole) {
	if e.resubmitPolicy == ResubmitResume {
		switch rejected {
		case domainwf.StatusAERejected:
			return domainwf.StatusAEReviewPending, assignment.StageRoleAssistant
		case domainwf.StatusEE1Rejected:
			return domainwf.StatusEE1ReviewPending, assignment.StageRoleExecutive
		case domainwf.StatusCE1Rejected:
			return domainwf.StatusCE1ReviewPending, assignment.StageRoleCity
		}
	}
	return domainwf.StatusJEReviewPending, assignment.StageRoleJunior
}

func (e *engineImpl) progress(ctx context.Context, applicationID int64, b boundary, actor, remarks string, auto bool) (*ProgressionResult, error) {
	app, err := e.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != b.from {
		return nil, fmt.Errorf("%w: application %d is %s, expected %s",
			ErrInvalidStageForProgression, applicationID, app.Status, b.from)
	}

	var officer *entity.Officer
	if b.stage != "" {
		officer, err = e.selectFor(ctx, app, b.stage)
		if err != nil {
			return nil, err
		}
	}

	return e.apply(ctx, app, b.to, officer, b.trigger, actor, remarks, auto)
}

func (e *engineImpl) load(ctx context.Context, applicationID int64) (*entity.Application, error) {
	app, err := e.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, fmt.Errorf("%w: id %d", ErrApplicationNotFound, applicationID)
	}
	return app, nil
}

func (e *engineImpl) selectFor(ctx context.Context, app *entity.Application, stage assignment.StageRole) (*entity.Officer, error) {
	officer, err := e.selector.Select(ctx, app.PositionCategory, stage, e.strategy)
	if err != nil {
		if errors.Is(err, assignment.ErrNoEligibleOfficer) {
			return nil, fmt.Errorf("%w: %v", ErrNoOfficerAvailable, err)
		}
		return nil, err
	}
	return officer, nil
}

// apply runs one validated transition: the optimistic status guard, the
// assignment record and the progression record commit atomically; side-effect
// events are emitted only after the commit.
func (e *engineImpl) apply(ctx context.Context, app *entity.Application, to domainwf.Status, officer *entity.Officer, trigger domainwf.Trigger, actor, remarks string, auto bool) (*ProgressionResult, error) {
	from := app.Status
	newStatus, err := e.machine.Apply(from, to)
	if err != nil {
		e.logger.Error("Illegal transition rejected",
			zap.Int64("application_id", app.ID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("actor", actor))
		return nil, err
	}

	var assignee *int64
	if officer != nil {
		id := officer.ID
		assignee = &id
	}
	prevAssignee := app.AssignedOfficerID
	now := time.Now()

	err = e.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ok, err := e.apps.TransitionStatus(txCtx, app.ID, from, newStatus, assignee, actor)
		if err != nil {
			return fmt.Errorf("transition status: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: application %d left %s concurrently",
				ErrInvalidStageForProgression, app.ID, from)
		}

		if officer != nil {
			record := &entity.AssignmentRecord{
				ApplicationID: app.ID,
				OfficerID:     officer.ID,
				Role:          officer.Role,
				AssignedBy:    actor,
				AssignedAt:    now,
			}
			if err := e.assignments.Create(txCtx, record); err != nil {
				return fmt.Errorf("create assignment record: %w", err)
			}
		}

		progression := &entity.ProgressionRecord{
			ApplicationID: app.ID,
			FromStatus:    from,
			ToStatus:      newStatus,
			FromOfficerID: prevAssignee,
			ToOfficerID:   assignee,
			Trigger:       trigger.String(),
			Comments:      remarks,
			Auto:          auto,
			Actor:         actor,
			CreatedAt:     now,
		}
		if err := e.progressions.Create(txCtx, progression); err != nil {
			return fmt.Errorf("create progression record: %w", err)
		}

		switch newStatus {
		case domainwf.StatusSubmitted:
			if app.Status == domainwf.StatusDraft {
				return e.apps.SetSubmittedAt(txCtx, app.ID, now)
			}
		case domainwf.StatusPaymentCompleted:
			return e.apps.SetPaymentCompletedAt(txCtx, app.ID, now)
		case domainwf.StatusCertificateIssued:
			return e.apps.SetCertificateIssuedAt(txCtx, app.ID, now)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	app.Status = newStatus
	app.AssignedOfficerID = assignee

	e.logger.Info("Application progressed",
		zap.Int64("application_id", app.ID),
		zap.String("application_number", app.ApplicationNumber),
		zap.String("from", from.String()),
		zap.String("to", newStatus.String()),
		zap.String("actor", actor),
		zap.Bool("auto", auto))

	e.emit(ctx, app, from, newStatus, trigger, actor, remarks)

	return &ProgressionResult{
		Success:           true,
		NewStatus:         newStatus,
		AssignedOfficerID: assignee,
		Message:           fmt.Sprintf("application progressed to %s", newStatus),
	}, nil
}

// emit publishes post-commit events. Handlers run detached from the request
// context so a caller hang-up cannot cancel a notification mid-send.
func (e *engineImpl) emit(ctx context.Context, app *entity.Application, from, to domainwf.Status, trigger domainwf.Trigger, actor, remarks string) {
	if e.dispatcher == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	payload := map[string]interface{}{
		"application_number": app.ApplicationNumber,
		"from_status":        from.String(),
		"to_status":          to.String(),
		"trigger":            trigger.String(),
		"actor":              actor,
		"remarks":            remarks,
	}

	e.dispatcher.DispatchAsync(bg, event.New(event.TypeStatusChanged, app.ID, payload))

	switch {
	case to == domainwf.StatusPaymentCompleted:
		e.dispatcher.DispatchAsync(bg, event.New(event.TypePaymentCompleted, app.ID, payload))
	case to == domainwf.StatusCertificateIssued:
		e.dispatcher.DispatchAsync(bg, event.New(event.TypeCertificateIssued, app.ID, payload))
	case to.IsRejection():
		e.dispatcher.DispatchAsync(bg, event.New(event.TypeStageRejected, app.ID, payload))
	}
}
