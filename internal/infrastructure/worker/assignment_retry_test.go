package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

type stubAppRepo struct {
	stalled []*entity.Application
	listErr error

	gotStatuses []domainwf.Status
	gotLimit    int
}

func (m *stubAppRepo) Create(ctx context.Context, app *entity.Application) error { return nil }
func (m *stubAppRepo) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	return nil, nil
}
func (m *stubAppRepo) GetByNumber(ctx context.Context, number string) (*entity.Application, error) {
	return nil, nil
}
func (m *stubAppRepo) List(ctx context.Context, limit, offset int) ([]*entity.Application, error) {
	return nil, nil
}

func (m *stubAppRepo) ListStalled(ctx context.Context, statuses []domainwf.Status, limit int) ([]*entity.Application, error) {
	m.gotStatuses = statuses
	m.gotLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.stalled, nil
}

func (m *stubAppRepo) TransitionStatus(ctx context.Context, id int64, from, to domainwf.Status, assignee *int64, actor string) (bool, error) {
	return true, nil
}
func (m *stubAppRepo) SetStageDecision(ctx context.Context, id int64, stage entity.StageCode, d entity.StageDecision) error {
	return nil
}
func (m *stubAppRepo) SetSubmittedAt(ctx context.Context, id int64, t time.Time) error { return nil }
func (m *stubAppRepo) SetPaymentCompletedAt(ctx context.Context, id int64, t time.Time) error {
	return nil
}
func (m *stubAppRepo) SetCertificateIssuedAt(ctx context.Context, id int64, t time.Time) error {
	return nil
}
func (m *stubAppRepo) OpenCountByOfficer(ctx context.Context, officerIDs []int64) (map[int64]int, error) {
	return map[int64]int{}, nil
}

type boundaryCall struct {
	name  string
	id    int64
	actor string
}

type stubEngine struct {
	err   error
	calls []boundaryCall
}

func (m *stubEngine) record(name string, id int64, actor string) (*workflow.ProgressionResult, error) {
	m.calls = append(m.calls, boundaryCall{name: name, id: id, actor: actor})
	if m.err != nil {
		return nil, m.err
	}
	return &workflow.ProgressionResult{Success: true, NewStatus: domainwf.StatusJEReviewPending}, nil
}

func (m *stubEngine) SubmitToJuniorEngineer(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("submit_to_je", id, actor)
}
func (m *stubEngine) ProgressToAssistantEngineer(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_ae", id, actor)
}
func (m *stubEngine) ProgressToExecutiveEngineerStage1(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_ee1", id, actor)
}
func (m *stubEngine) ProgressToCityEngineer(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_ce1", id, actor)
}
func (m *stubEngine) ProgressToPayment(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_payment", id, actor)
}
func (m *stubEngine) ProgressToClerk(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_clerk", id, actor)
}
func (m *stubEngine) ProgressToExecutiveEngineerSignature(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_ee2", id, actor)
}
func (m *stubEngine) ProgressToCityEngineerFinalSignature(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("to_ce2", id, actor)
}
func (m *stubEngine) ConfirmPayment(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("confirm_payment", id, actor)
}
func (m *stubEngine) CompleteSignature(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("sign", id, actor)
}
func (m *stubEngine) IssueCertificate(ctx context.Context, id int64, actor, remarks string) (*workflow.ProgressionResult, error) {
	return m.record("issue", id, actor)
}
func (m *stubEngine) CompleteWorkflow(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("complete", id, actor)
}
func (m *stubEngine) ResubmitAfterRejection(ctx context.Context, id int64, actor string) (*workflow.ProgressionResult, error) {
	return m.record("resubmit", id, actor)
}
func (m *stubEngine) Transition(ctx context.Context, id int64, from, to domainwf.Status, actor, remarks string) (*workflow.ProgressionResult, error) {
	return m.record("transition", id, actor)
}
func (m *stubEngine) Machine() *domainwf.Machine {
	return workflow.BuildPermitMachine()
}

func TestSweepProgressesStalledApplications(t *testing.T) {
	apps := &stubAppRepo{stalled: []*entity.Application{
		{ID: 1, Status: domainwf.StatusSubmitted},
		{ID: 2, Status: domainwf.StatusPaymentCompleted},
		{ID: 3, Status: domainwf.StatusCertificateIssued},
	}}
	engine := &stubEngine{}

	w := NewAssignmentRetryWorker(DefaultRetryConfig(), apps, engine, zap.NewNop())
	w.sweep(context.Background())

	if apps.gotLimit != 10 {
		t.Errorf("batch size = %d, want 10", apps.gotLimit)
	}
	if len(apps.gotStatuses) != len(retryBoundaries) {
		t.Errorf("queried %d statuses, want %d", len(apps.gotStatuses), len(retryBoundaries))
	}

	if len(engine.calls) != 3 {
		t.Fatalf("expected 3 boundary calls, got %d", len(engine.calls))
	}

	want := map[int64]string{1: "submit_to_je", 2: "to_clerk", 3: "complete"}
	for _, call := range engine.calls {
		if call.name != want[call.id] {
			t.Errorf("application %d routed through %s, want %s", call.id, call.name, want[call.id])
		}
		if call.actor != "system:retry" {
			t.Errorf("actor = %s, want system:retry", call.actor)
		}
	}
}

func TestSweepKeepsGoingWhenNoOfficerAvailable(t *testing.T) {
	apps := &stubAppRepo{stalled: []*entity.Application{
		{ID: 1, Status: domainwf.StatusSubmitted},
		{ID: 2, Status: domainwf.StatusJEApproved},
	}}
	engine := &stubEngine{err: workflow.ErrNoOfficerAvailable}

	w := NewAssignmentRetryWorker(DefaultRetryConfig(), apps, engine, zap.NewNop())
	w.sweep(context.Background())

	// both applications are retried despite the first failure
	if len(engine.calls) != 2 {
		t.Errorf("expected 2 boundary calls, got %d", len(engine.calls))
	}
}

func TestSweepToleratesLostRace(t *testing.T) {
	apps := &stubAppRepo{stalled: []*entity.Application{
		{ID: 1, Status: domainwf.StatusEE2SignCompleted},
	}}
	engine := &stubEngine{err: workflow.ErrInvalidStageForProgression}

	w := NewAssignmentRetryWorker(DefaultRetryConfig(), apps, engine, zap.NewNop())
	w.sweep(context.Background())

	if len(engine.calls) != 1 {
		t.Errorf("expected 1 boundary call, got %d", len(engine.calls))
	}
}

func TestRetryBoundariesCoverAutoProgressableStatuses(t *testing.T) {
	expected := []domainwf.Status{
		domainwf.StatusSubmitted,
		domainwf.StatusJEApproved,
		domainwf.StatusAEApproved,
		domainwf.StatusEE1Approved,
		domainwf.StatusCE1Approved,
		domainwf.StatusPaymentCompleted,
		domainwf.StatusClerkProcessed,
		domainwf.StatusEE2SignCompleted,
		domainwf.StatusCertificateIssued,
	}

	if len(retryBoundaries) != len(expected) {
		t.Errorf("retry boundaries cover %d statuses, want %d", len(retryBoundaries), len(expected))
	}
	for _, status := range expected {
		if _, ok := retryBoundaries[status]; !ok {
			t.Errorf("no retry boundary for %s", status)
		}
	}
}

func TestWorkerStartStop(t *testing.T) {
	w := NewAssignmentRetryWorker(RetryConfig{PollInterval: time.Hour, BatchSize: 1}, &stubAppRepo{}, &stubEngine{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("expected error on double start")
	}

	cancel()
	if err := w.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// idempotent stop
	if err := w.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
