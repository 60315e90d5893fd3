package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
	"github.com/yashturmbekar/pmcrms/pkg/utils"
)

var (
	// ErrInvalidCategory is returned when the applicant's position category is
	// not one of the supported registration tracks
	ErrInvalidCategory = errors.New("invalid position category")

	// ErrMissingApplicant is returned when applicant name or email is empty
	ErrMissingApplicant = errors.New("applicant name and email are required")
)

// CreateApplicationRequest carries the intake fields for a new registration
type CreateApplicationRequest struct {
	ApplicantName    string                  `json:"applicant_name"`
	ApplicantEmail   string                  `json:"applicant_email"`
	PositionCategory entity.PositionCategory `json:"position_category"`
}

// ApplicationService owns the intake side of the registration lifecycle:
// drafting, submission into review, resubmission after rejection, and reads
type ApplicationService interface {
	CreateDraft(ctx context.Context, req CreateApplicationRequest, actor string) (*entity.Application, error)

	// Submit moves a draft into review and hands it to a junior engineer.
	// When no officer is available the submission itself still stands.
	Submit(ctx context.Context, applicationID int64, actor string) (*workflow.ProgressionResult, error)

	// Resubmit returns a rejected application to review after correction
	Resubmit(ctx context.Context, applicationID int64, actor string) (*workflow.ProgressionResult, error)

	// ConfirmPayment consumes the payment gateway's confirmation. The payment
	// fact is committed even when the follow-on clerk assignment fails.
	ConfirmPayment(ctx context.Context, applicationID int64, reference string) (*workflow.ProgressionResult, error)

	// Close administratively rejects a submitted application. This is the only
	// path into the terminal REJECTED status; stage rejections stay recoverable.
	Close(ctx context.Context, applicationID int64, actor, reason string) (*workflow.ProgressionResult, error)

	Get(ctx context.Context, applicationID int64) (*entity.Application, error)
	GetByNumber(ctx context.Context, number string) (*entity.Application, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Application, error)
}

type applicationServiceImpl struct {
	apps   port.ApplicationRepository
	engine workflow.Engine
	logger *zap.Logger
	now    func() time.Time
}

// NewApplicationService creates the intake service
func NewApplicationService(apps port.ApplicationRepository, engine workflow.Engine, logger *zap.Logger) ApplicationService {
	return &applicationServiceImpl{
		apps:   apps,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

func (s *applicationServiceImpl) CreateDraft(ctx context.Context, req CreateApplicationRequest, actor string) (*entity.Application, error) {
	if strings.TrimSpace(req.ApplicantName) == "" || strings.TrimSpace(req.ApplicantEmail) == "" {
		return nil, ErrMissingApplicant
	}
	if err := utils.ValidateEmail(strings.TrimSpace(req.ApplicantEmail)); err != nil {
		return nil, err
	}
	if !req.PositionCategory.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCategory, req.PositionCategory)
	}

	now := s.now()
	app := &entity.Application{
		ApplicationNumber: newApplicationNumber(now),
		ApplicantName:     strings.TrimSpace(req.ApplicantName),
		ApplicantEmail:    strings.TrimSpace(req.ApplicantEmail),
		PositionCategory:  req.PositionCategory,
		Status:            domainwf.StatusDraft,
		CreatedBy:         actor,
		UpdatedBy:         actor,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.logger.Info("Application drafted",
		zap.Int64("application_id", app.ID),
		zap.String("application_number", app.ApplicationNumber),
		zap.String("position_category", string(app.PositionCategory)))

	return app, nil
}

func (s *applicationServiceImpl) Submit(ctx context.Context, applicationID int64, actor string) (*workflow.ProgressionResult, error) {
	if _, err := s.engine.Transition(ctx, applicationID, domainwf.StatusDraft, domainwf.StatusSubmitted, actor, "application submitted"); err != nil {
		return nil, err
	}

	result, err := s.engine.SubmitToJuniorEngineer(ctx, applicationID, actor)
	if err != nil {
		if errors.Is(err, workflow.ErrNoOfficerAvailable) {
			s.logger.Warn("Submission accepted but no junior engineer available",
				zap.Int64("application_id", applicationID))
			return &workflow.ProgressionResult{
				Success:   false,
				NewStatus: domainwf.StatusSubmitted,
				Message:   "submitted; awaiting junior engineer availability",
			}, nil
		}
		return nil, err
	}
	return result, nil
}

func (s *applicationServiceImpl) Resubmit(ctx context.Context, applicationID int64, actor string) (*workflow.ProgressionResult, error) {
	return s.engine.ResubmitAfterRejection(ctx, applicationID, actor)
}

func (s *applicationServiceImpl) ConfirmPayment(ctx context.Context, applicationID int64, reference string) (*workflow.ProgressionResult, error) {
	actor := "payment-gateway"
	if reference != "" {
		actor = fmt.Sprintf("payment-gateway:%s", reference)
	}
	return s.engine.ConfirmPayment(ctx, applicationID, actor)
}

func (s *applicationServiceImpl) Close(ctx context.Context, applicationID int64, actor, reason string) (*workflow.ProgressionResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrMissingReason
	}

	result, err := s.engine.Transition(ctx, applicationID, domainwf.StatusSubmitted, domainwf.StatusRejected, actor, reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application administratively closed",
		zap.Int64("application_id", applicationID),
		zap.String("actor", actor))
	return result, nil
}

func (s *applicationServiceImpl) Get(ctx context.Context, applicationID int64) (*entity.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: id %d", workflow.ErrApplicationNotFound, applicationID)
	}
	return app, nil
}

func (s *applicationServiceImpl) GetByNumber(ctx context.Context, number string) (*entity.Application, error) {
	app, err := s.apps.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: number %s", workflow.ErrApplicationNotFound, number)
	}
	return app, nil
}

func (s *applicationServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.Application, error) {
	return s.apps.List(ctx, limit, offset)
}

// newApplicationNumber builds a human-readable registration number, e.g.
// PMC-2026-1A2B3C4D. The random suffix keeps intake free of a counter table.
func newApplicationNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PMC-%d-%s", now.Year(), suffix)
}
