package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// RetryConfig holds configuration for the assignment retry worker
type RetryConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultRetryConfig returns default configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// retryBoundaries maps a stalled status to the engine boundary that moves the
// application onward. An application parks unassigned in one of these statuses
// only when officer selection failed at transition time.
type retryBoundary func(e workflow.Engine, ctx context.Context, applicationID int64, actor string) (*workflow.ProgressionResult, error)

var retryBoundaries = map[domainwf.Status]retryBoundary{
	domainwf.StatusSubmitted: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.SubmitToJuniorEngineer(ctx, id, actor)
	},
	domainwf.StatusJEApproved: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToAssistantEngineer(ctx, id, actor)
	},
	domainwf.StatusAEApproved: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToExecutiveEngineerStage1(ctx, id, actor)
	},
	domainwf.StatusEE1Approved: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToCityEngineer(ctx, id, actor)
	},
	domainwf.StatusCE1Approved: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToPayment(ctx, id, actor)
	},
	domainwf.StatusPaymentCompleted: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToClerk(ctx, id, actor)
	},
	domainwf.StatusClerkProcessed: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToExecutiveEngineerSignature(ctx, id, actor)
	},
	domainwf.StatusEE2SignCompleted: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.ProgressToCityEngineerFinalSignature(ctx, id, actor)
	},
	domainwf.StatusCertificateIssued: func(e workflow.Engine, ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
		return e.CompleteWorkflow(ctx, id, actor)
	},
}

// AssignmentRetryWorker periodically re-runs officer assignment for
// applications that stalled because no eligible officer was available
type AssignmentRetryWorker struct {
	config RetryConfig
	apps   port.ApplicationRepository
	engine workflow.Engine
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewAssignmentRetryWorker creates the retry worker
func NewAssignmentRetryWorker(
	config RetryConfig,
	apps port.ApplicationRepository,
	engine workflow.Engine,
	logger *zap.Logger,
) *AssignmentRetryWorker {
	return &AssignmentRetryWorker{
		config: config,
		apps:   apps,
		engine: engine,
		logger: logger,
	}
}

// Name implements Worker
func (w *AssignmentRetryWorker) Name() string {
	return "assignment-retry"
}

// Start implements Worker
func (w *AssignmentRetryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("assignment retry worker already running")
	}
	w.running = true
	w.done = make(chan struct{})

	go w.run(ctx)
	return nil
}

// Stop implements Worker. Blocks until the poll loop exits.
func (w *AssignmentRetryWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	done := w.done
	w.mu.Unlock()

	<-done
	return nil
}

func (w *AssignmentRetryWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep retries every stalled application once. No-officer failures stay
// stalled for the next sweep; anything else is logged.
func (w *AssignmentRetryWorker) sweep(ctx context.Context) {
	statuses := make([]domainwf.Status, 0, len(retryBoundaries))
	for status := range retryBoundaries {
		statuses = append(statuses, status)
	}

	stalled, err := w.apps.ListStalled(ctx, statuses, w.config.BatchSize)
	if err != nil {
		w.logger.Error("Failed to list stalled applications", zap.Error(err))
		return
	}

	for _, app := range stalled {
		boundary, ok := retryBoundaries[app.Status]
		if !ok {
			continue
		}

		result, err := boundary(w.engine, ctx, app.ID, "system:retry")
		switch {
		case errors.Is(err, workflow.ErrNoOfficerAvailable):
			w.logger.Debug("Still no officer available",
				zap.Int64("application_id", app.ID),
				zap.String("status", string(app.Status)))
		case errors.Is(err, workflow.ErrInvalidStageForProgression):
			// Lost a race with a concurrent transition; nothing to retry
		case err != nil:
			w.logger.Error("Assignment retry failed",
				zap.Int64("application_id", app.ID),
				zap.Error(err))
		default:
			w.logger.Info("Stalled application progressed",
				zap.Int64("application_id", app.ID),
				zap.String("new_status", string(result.NewStatus)))
		}
	}
}

// Verify interface compliance
var _ Worker = (*AssignmentRetryWorker)(nil)
