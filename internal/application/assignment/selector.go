package assignment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/directory"
	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
)

var (
	// ErrNoEligibleOfficer is returned when no active officer holds the
	// required role. Retryable: activate an officer and select again.
	ErrNoEligibleOfficer = errors.New("no eligible officer for role")

	// ErrUnknownStrategy is returned for a strategy outside the fixed set
	ErrUnknownStrategy = errors.New("unknown assignment strategy")

	// ErrUnknownStage is returned when a stage role cannot be resolved for
	// the position category
	ErrUnknownStage = errors.New("no role mapping for stage")
)

// Selector picks one eligible officer for a stage. It never mutates state;
// persisting the assignment is the progression engine's responsibility.
type Selector interface {
	Select(ctx context.Context, category entity.PositionCategory, stage StageRole, strategy Strategy) (*entity.Officer, error)
}

type selectorImpl struct {
	directory   directory.Directory
	apps        port.ApplicationRepository
	assignments port.AssignmentHistoryRepository
	logger      *zap.Logger
	intn        func(n int) int
}

// Option configures the selector
type Option func(*selectorImpl)

// WithRand overrides the random source, used by tests for determinism
func WithRand(intn func(n int) int) Option {
	return func(s *selectorImpl) {
		s.intn = intn
	}
}

// NewSelector creates an assignment selector
func NewSelector(
	dir directory.Directory,
	apps port.ApplicationRepository,
	assignments port.AssignmentHistoryRepository,
	logger *zap.Logger,
	opts ...Option,
) Selector {
	s := &selectorImpl{
		directory:   dir,
		apps:        apps,
		assignments: assignments,
		logger:      logger,
		intn:        rand.New(rand.NewSource(time.Now().UnixNano())).Intn,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Select resolves the concrete role for the stage and picks one eligible
// officer with the requested strategy. Workload and priority ties fall back
// to a random choice among the tied candidates.
func (s *selectorImpl) Select(ctx context.Context, category entity.PositionCategory, stage StageRole, strategy Strategy) (*entity.Officer, error) {
	role, ok := ResolveRole(stage, category)
	if !ok {
		return nil, fmt.Errorf("%w: stage %s, category %s", ErrUnknownStage, stage, category)
	}

	eligible, err := s.directory.FindEligible(ctx, role)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEligibleOfficer, role)
	}

	var picked *entity.Officer
	switch strategy {
	case StrategyRandom, "":
		picked = eligible[s.intn(len(eligible))]
	case StrategyRoundRobin:
		picked, err = s.pickLeastRecentlyAssigned(ctx, eligible)
	case StrategyWorkloadBased:
		picked, err = s.pickLeastLoaded(ctx, eligible)
	case StrategyPriorityBased:
		picked = s.pickByPriority(eligible)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Officer selected",
		zap.String("role", role.String()),
		zap.String("strategy", strategy.String()),
		zap.Int64("officer_id", picked.ID),
		zap.Int("eligible", len(eligible)))

	return picked, nil
}

func (s *selectorImpl) pickLeastRecentlyAssigned(ctx context.Context, eligible []*entity.Officer) (*entity.Officer, error) {
	times, err := s.assignments.LatestAssignmentTimes(ctx, officerIDs(eligible))
	if err != nil {
		return nil, fmt.Errorf("latest assignment times: %w", err)
	}

	// Officers never assigned sort before everyone else (zero time)
	var oldest time.Time
	first := true
	for _, o := range eligible {
		t := times[o.ID]
		if first || t.Before(oldest) {
			oldest = t
			first = false
		}
	}

	var tied []*entity.Officer
	for _, o := range eligible {
		if times[o.ID].Equal(oldest) {
			tied = append(tied, o)
		}
	}
	return tied[s.intn(len(tied))], nil
}

func (s *selectorImpl) pickLeastLoaded(ctx context.Context, eligible []*entity.Officer) (*entity.Officer, error) {
	counts, err := s.apps.OpenCountByOfficer(ctx, officerIDs(eligible))
	if err != nil {
		return nil, fmt.Errorf("open assignment counts: %w", err)
	}

	minCount := math.MaxInt
	for _, o := range eligible {
		if c := counts[o.ID]; c < minCount {
			minCount = c
		}
	}

	var tied []*entity.Officer
	for _, o := range eligible {
		if counts[o.ID] == minCount {
			tied = append(tied, o)
		}
	}
	return tied[s.intn(len(tied))], nil
}

func (s *selectorImpl) pickByPriority(eligible []*entity.Officer) *entity.Officer {
	best := math.MaxInt
	for _, o := range eligible {
		if o.Priority < best {
			best = o.Priority
		}
	}

	var tied []*entity.Officer
	for _, o := range eligible {
		if o.Priority == best {
			tied = append(tied, o)
		}
	}
	return tied[s.intn(len(tied))]
}

func officerIDs(officers []*entity.Officer) []int64 {
	ids := make([]int64, len(officers))
	for i, o := range officers {
		ids[i] = o.ID
	}
	return ids
}
