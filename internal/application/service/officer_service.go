package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/directory"
	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/pkg/utils"
)

// ErrInvalidRole is returned when onboarding names an unknown officer role
var ErrInvalidRole = errors.New("invalid officer role")

// OnboardOfficerRequest carries the fields for registering a new officer
type OnboardOfficerRequest struct {
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Role     entity.OfficerRole `json:"role"`
	Priority int                `json:"priority"`
}

// OfficerWorkload pairs an officer with their count of open applications
type OfficerWorkload struct {
	Officer  *entity.Officer `json:"officer"`
	OpenLoad int             `json:"open_load"`
}

// OfficerService manages the officer roster used by assignment
type OfficerService interface {
	Onboard(ctx context.Context, req OnboardOfficerRequest) (*entity.Officer, error)
	SetActive(ctx context.Context, officerID int64, active bool) error
	Get(ctx context.Context, officerID int64) (*entity.Officer, error)
	List(ctx context.Context, limit, offset int) ([]*OfficerWorkload, error)
}

type officerServiceImpl struct {
	officers port.OfficerRepository
	apps     port.ApplicationRepository
	logger   *zap.Logger
}

// NewOfficerService creates the roster service
func NewOfficerService(officers port.OfficerRepository, apps port.ApplicationRepository, logger *zap.Logger) OfficerService {
	return &officerServiceImpl{
		officers: officers,
		apps:     apps,
		logger:   logger,
	}
}

func (s *officerServiceImpl) Onboard(ctx context.Context, req OnboardOfficerRequest) (*entity.Officer, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, errors.New("officer name and email are required")
	}
	if err := utils.ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, req.Role)
	}

	now := time.Now()
	officer := &entity.Officer{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Role:      req.Role,
		Active:    true,
		Priority:  req.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.officers.Create(ctx, officer); err != nil {
		return nil, fmt.Errorf("create officer: %w", err)
	}

	s.logger.Info("Officer onboarded",
		zap.Int64("officer_id", officer.ID),
		zap.String("role", string(officer.Role)))
	return officer, nil
}

func (s *officerServiceImpl) SetActive(ctx context.Context, officerID int64, active bool) error {
	officer, err := s.officers.GetByID(ctx, officerID)
	if err != nil {
		return err
	}
	if officer == nil {
		return fmt.Errorf("%w: id %d", directory.ErrOfficerNotFound, officerID)
	}
	return s.officers.SetActive(ctx, officerID, active)
}

func (s *officerServiceImpl) Get(ctx context.Context, officerID int64) (*entity.Officer, error) {
	officer, err := s.officers.GetByID(ctx, officerID)
	if err != nil {
		return nil, err
	}
	if officer == nil {
		return nil, fmt.Errorf("%w: id %d", directory.ErrOfficerNotFound, officerID)
	}
	return officer, nil
}

func (s *officerServiceImpl) List(ctx context.Context, limit, offset int) ([]*OfficerWorkload, error) {
	officers, err := s.officers.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(officers) == 0 {
		return []*OfficerWorkload{}, nil
	}

	ids := make([]int64, 0, len(officers))
	for _, o := range officers {
		ids = append(ids, o.ID)
	}
	loads, err := s.apps.OpenCountByOfficer(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load officer workloads: %w", err)
	}

	result := make([]*OfficerWorkload, 0, len(officers))
	for _, o := range officers {
		result = append(result, &OfficerWorkload{Officer: o, OpenLoad: loads[o.ID]})
	}
	return result, nil
}
