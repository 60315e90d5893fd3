package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/assignment"
	"github.com/yashturmbekar/pmcrms/internal/application/dispatcher"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/event"
	domainwf "github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// Mock implementations

type mockAppRepo struct {
	apps      map[int64]*entity.Application
	guardFail bool

	submittedAt   map[int64]time.Time
	paymentAt     map[int64]time.Time
	certificateAt map[int64]time.Time
}

func newMockAppRepo(apps ...*entity.Application) *mockAppRepo {
	m := &mockAppRepo{
		apps:          make(map[int64]*entity.Application),
		submittedAt:   make(map[int64]time.Time),
		paymentAt:     make(map[int64]time.Time),
		certificateAt: make(map[int64]time.Time),
	}
	for _, a := range apps {
		m.apps[a.ID] = a
	}
	return m
}

func (m *mockAppRepo) Create(ctx context.Context, app *entity.Application) error {
	m.apps[app.ID] = app
	return nil
}

func (m *mockAppRepo) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, nil
	}
	copied := *app
	return &copied, nil
}

func (m *mockAppRepo) GetByNumber(ctx context.Context, number string) (*entity.Application, error) {
	for _, app := range m.apps {
		if app.ApplicationNumber == number {
			return app, nil
		}
	}
	return nil, nil
}

func (m *mockAppRepo) List(ctx context.Context, limit, offset int) ([]*entity.Application, error) {
	return nil, nil
}

func (m *mockAppRepo) ListStalled(ctx context.Context, statuses []domainwf.Status, limit int) ([]*entity.Application, error) {
	return nil, nil
}

func (m *mockAppRepo) TransitionStatus(ctx context.Context, id int64, from, to domainwf.Status, assignee *int64, actor string) (bool, error) {
	if m.guardFail {
		return false, nil
	}
	app, ok := m.apps[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	app.AssignedOfficerID = assignee
	app.UpdatedBy = actor
	return true, nil
}

func (m *mockAppRepo) SetStageDecision(ctx context.Context, id int64, stage entity.StageCode, d entity.StageDecision) error {
	return nil
}

func (m *mockAppRepo) SetSubmittedAt(ctx context.Context, id int64, t time.Time) error {
	m.submittedAt[id] = t
	return nil
}

func (m *mockAppRepo) SetPaymentCompletedAt(ctx context.Context, id int64, t time.Time) error {
	m.paymentAt[id] = t
	return nil
}

func (m *mockAppRepo) SetCertificateIssuedAt(ctx context.Context, id int64, t time.Time) error {
	m.certificateAt[id] = t
	return nil
}

func (m *mockAppRepo) OpenCountByOfficer(ctx context.Context, officerIDs []int64) (map[int64]int, error) {
	return map[int64]int{}, nil
}

type mockAssignmentRepo struct {
	records   []*entity.AssignmentRecord
	createErr error
}

func (m *mockAssignmentRepo) Create(ctx context.Context, record *entity.AssignmentRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockAssignmentRepo) GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.AssignmentRecord, error) {
	return m.records, nil
}

func (m *mockAssignmentRepo) Latest(ctx context.Context, applicationID int64) (*entity.AssignmentRecord, error) {
	if len(m.records) == 0 {
		return nil, nil
	}
	return m.records[len(m.records)-1], nil
}

func (m *mockAssignmentRepo) LatestAssignmentTimes(ctx context.Context, officerIDs []int64) (map[int64]time.Time, error) {
	return map[int64]time.Time{}, nil
}

type mockProgressionRepo struct {
	records []*entity.ProgressionRecord
}

func (m *mockProgressionRepo) Create(ctx context.Context, record *entity.ProgressionRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockProgressionRepo) GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.ProgressionRecord, error) {
	return m.records, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockSelector struct {
	officer *entity.Officer
	err     error

	lastStage assignment.StageRole
}

func (m *mockSelector) Select(ctx context.Context, category entity.PositionCategory, stage assignment.StageRole, strategy assignment.Strategy) (*entity.Officer, error) {
	m.lastStage = stage
	if m.err != nil {
		return nil, m.err
	}
	return m.officer, nil
}

type mockEventSink struct {
	events []*event.Event
}

func (m *mockEventSink) Subscribe(eventType event.Type, name string, handler dispatcher.Handler) {}

func (m *mockEventSink) Dispatch(ctx context.Context, evt *event.Event) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *mockEventSink) DispatchAsync(ctx context.Context, evt *event.Event) {
	m.events = append(m.events, evt)
}

func (m *mockEventSink) Close() error {
	return nil
}

func (m *mockEventSink) ofType(t event.Type) []*event.Event {
	var out []*event.Event
	for _, e := range m.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Test engine

func testApp(id int64, status domainwf.Status) *entity.Application {
	return &entity.Application{
		ID:                id,
		ApplicationNumber: "PMC-2026-TESTTEST",
		ApplicantName:     "Asha Kulkarni",
		ApplicantEmail:    "asha@example.com",
		PositionCategory:  entity.CategoryArchitect,
		Status:            status,
	}
}

func testOfficer(id int64, role entity.OfficerRole) *entity.Officer {
	return &entity.Officer{ID: id, Name: "Officer", Role: role, Active: true}
}

func TestEngineSubmitToJuniorEngineer(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusSubmitted))
	assignments := &mockAssignmentRepo{}
	progressions := &mockProgressionRepo{}
	selector := &mockSelector{officer: testOfficer(7, entity.RoleJEArchitect)}

	engine := NewEngine(apps, assignments, progressions, selector, &mockTxManager{}, zap.NewNop())

	result, err := engine.SubmitToJuniorEngineer(context.Background(), 1, "applicant:asha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	if result.NewStatus != domainwf.StatusJEReviewPending {
		t.Errorf("expected JE_REVIEW_PENDING, got %s", result.NewStatus)
	}
	if result.AssignedOfficerID == nil || *result.AssignedOfficerID != 7 {
		t.Errorf("expected assignee 7, got %v", result.AssignedOfficerID)
	}
	if selector.lastStage != assignment.StageRoleJunior {
		t.Errorf("expected junior stage selection, got %s", selector.lastStage)
	}

	if len(assignments.records) != 1 {
		t.Fatalf("expected 1 assignment record, got %d", len(assignments.records))
	}
	if assignments.records[0].OfficerID != 7 {
		t.Errorf("assignment record officer = %d, want 7", assignments.records[0].OfficerID)
	}

	if len(progressions.records) != 1 {
		t.Fatalf("expected 1 progression record, got %d", len(progressions.records))
	}
	rec := progressions.records[0]
	if rec.FromStatus != domainwf.StatusSubmitted || rec.ToStatus != domainwf.StatusJEReviewPending {
		t.Errorf("progression %s -> %s, want SUBMITTED -> JE_REVIEW_PENDING", rec.FromStatus, rec.ToStatus)
	}
	if rec.Trigger != string(domainwf.TriggerAssignReviewer) {
		t.Errorf("progression trigger = %s, want ASSIGN_REVIEWER", rec.Trigger)
	}
	if !rec.Auto {
		t.Error("expected automatic progression record")
	}

	stored := apps.apps[1]
	if stored.Status != domainwf.StatusJEReviewPending {
		t.Errorf("stored status = %s, want JE_REVIEW_PENDING", stored.Status)
	}
}

func TestEngineProgressWrongStage(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusDraft))
	progressions := &mockProgressionRepo{}

	engine := NewEngine(apps, &mockAssignmentRepo{}, progressions, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	_, err := engine.SubmitToJuniorEngineer(context.Background(), 1, "applicant:asha")
	if !errors.Is(err, ErrInvalidStageForProgression) {
		t.Fatalf("expected ErrInvalidStageForProgression, got %v", err)
	}

	if len(progressions.records) != 0 {
		t.Errorf("expected no progression records, got %d", len(progressions.records))
	}
	if apps.apps[1].Status != domainwf.StatusDraft {
		t.Errorf("status mutated to %s", apps.apps[1].Status)
	}
}

func TestEngineApplicationNotFound(t *testing.T) {
	engine := NewEngine(newMockAppRepo(), &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	_, err := engine.SubmitToJuniorEngineer(context.Background(), 999, "applicant:asha")
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestEngineNoOfficerAvailable(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusSubmitted))
	progressions := &mockProgressionRepo{}
	selector := &mockSelector{err: assignment.ErrNoEligibleOfficer}

	engine := NewEngine(apps, &mockAssignmentRepo{}, progressions, selector, &mockTxManager{}, zap.NewNop())

	_, err := engine.SubmitToJuniorEngineer(context.Background(), 1, "applicant:asha")
	if !errors.Is(err, ErrNoOfficerAvailable) {
		t.Fatalf("expected ErrNoOfficerAvailable, got %v", err)
	}

	// the application must stay retryable in its current status
	if apps.apps[1].Status != domainwf.StatusSubmitted {
		t.Errorf("status mutated to %s", apps.apps[1].Status)
	}
	if len(progressions.records) != 0 {
		t.Errorf("expected no progression records, got %d", len(progressions.records))
	}
}

func TestEngineOptimisticGuardRejectsConcurrentWrite(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusSubmitted))
	apps.guardFail = true
	assignments := &mockAssignmentRepo{}
	selector := &mockSelector{officer: testOfficer(7, entity.RoleJEArchitect)}

	engine := NewEngine(apps, assignments, &mockProgressionRepo{}, selector, &mockTxManager{}, zap.NewNop())

	_, err := engine.SubmitToJuniorEngineer(context.Background(), 1, "applicant:asha")
	if !errors.Is(err, ErrInvalidStageForProgression) {
		t.Fatalf("expected ErrInvalidStageForProgression, got %v", err)
	}
	if len(assignments.records) != 0 {
		t.Errorf("expected no assignment records after guard rejection, got %d", len(assignments.records))
	}
}

func TestEngineConfirmPayment(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusPaymentPending))
	progressions := &mockProgressionRepo{}
	selector := &mockSelector{officer: testOfficer(5, entity.RoleClerk)}

	engine := NewEngine(apps, &mockAssignmentRepo{}, progressions, selector, &mockTxManager{}, zap.NewNop())

	result, err := engine.ConfirmPayment(context.Background(), 1, "payment-gateway:TXN123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NewStatus != domainwf.StatusClerkPending {
		t.Errorf("expected CLERK_PENDING, got %s", result.NewStatus)
	}
	if _, ok := apps.paymentAt[1]; !ok {
		t.Error("expected payment completion timestamp to be recorded")
	}
	if len(progressions.records) != 2 {
		t.Fatalf("expected 2 progression records, got %d", len(progressions.records))
	}
	if progressions.records[0].ToStatus != domainwf.StatusPaymentCompleted {
		t.Errorf("first hop to %s, want PAYMENT_COMPLETED", progressions.records[0].ToStatus)
	}
}

func TestEngineConfirmPaymentClerkUnavailable(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusPaymentPending))
	selector := &mockSelector{err: assignment.ErrNoEligibleOfficer}

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, selector, &mockTxManager{}, zap.NewNop())

	result, err := engine.ConfirmPayment(context.Background(), 1, "payment-gateway")
	if err != nil {
		t.Fatalf("payment confirmation must not fail on clerk unavailability: %v", err)
	}

	// the payment fact is durable even though onward routing is pending
	if result.NewStatus != domainwf.StatusPaymentCompleted {
		t.Errorf("expected PAYMENT_COMPLETED, got %s", result.NewStatus)
	}
	if apps.apps[1].Status != domainwf.StatusPaymentCompleted {
		t.Errorf("stored status = %s, want PAYMENT_COMPLETED", apps.apps[1].Status)
	}
	if _, ok := apps.paymentAt[1]; !ok {
		t.Error("expected payment completion timestamp to be recorded")
	}
}

func TestEngineConfirmPaymentWrongStage(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusClerkPending))

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	_, err := engine.ConfirmPayment(context.Background(), 1, "payment-gateway")
	if !errors.Is(err, ErrInvalidStageForProgression) {
		t.Fatalf("expected ErrInvalidStageForProgression, got %v", err)
	}
}

func TestEngineResubmitRestart(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusAERejected))
	selector := &mockSelector{officer: testOfficer(3, entity.RoleJEArchitect)}

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, selector, &mockTxManager{}, zap.NewNop())

	result, err := engine.ResubmitAfterRejection(context.Background(), 1, "applicant:asha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NewStatus != domainwf.StatusJEReviewPending {
		t.Errorf("restart policy re-enters at %s, want JE_REVIEW_PENDING", result.NewStatus)
	}
	if selector.lastStage != assignment.StageRoleJunior {
		t.Errorf("expected junior stage selection, got %s", selector.lastStage)
	}
}

func TestEngineResubmitResumePolicy(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusAERejected))
	selector := &mockSelector{officer: testOfficer(4, entity.RoleAEArchitect)}

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, selector, &mockTxManager{}, zap.NewNop(),
		WithResubmitPolicy(ResubmitResume))

	result, err := engine.ResubmitAfterRejection(context.Background(), 1, "applicant:asha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NewStatus != domainwf.StatusAEReviewPending {
		t.Errorf("resume policy re-enters at %s, want AE_REVIEW_PENDING", result.NewStatus)
	}
}

func TestEngineResubmitNoOfficerLeavesRejection(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusJERejected))
	progressions := &mockProgressionRepo{}
	selector := &mockSelector{err: assignment.ErrNoEligibleOfficer}

	engine := NewEngine(apps, &mockAssignmentRepo{}, progressions, selector, &mockTxManager{}, zap.NewNop())

	_, err := engine.ResubmitAfterRejection(context.Background(), 1, "applicant:asha")
	if !errors.Is(err, ErrNoOfficerAvailable) {
		t.Fatalf("expected ErrNoOfficerAvailable, got %v", err)
	}

	if apps.apps[1].Status != domainwf.StatusJERejected {
		t.Errorf("status mutated to %s, want unchanged JE_REJECTED", apps.apps[1].Status)
	}
	if len(progressions.records) != 0 {
		t.Errorf("expected no progression records, got %d", len(progressions.records))
	}
}

func TestEngineResubmitFromNonRejection(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusJEReviewPending))

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	_, err := engine.ResubmitAfterRejection(context.Background(), 1, "applicant:asha")
	if !errors.Is(err, ErrInvalidStageForProgression) {
		t.Fatalf("expected ErrInvalidStageForProgression, got %v", err)
	}
}

func TestEngineTransition(t *testing.T) {
	officerID := int64(7)
	app := testApp(1, domainwf.StatusJEReviewPending)
	app.AssignedOfficerID = &officerID
	apps := newMockAppRepo(app)
	progressions := &mockProgressionRepo{}

	engine := NewEngine(apps, &mockAssignmentRepo{}, progressions, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	result, err := engine.Transition(context.Background(), 1, domainwf.StatusJEReviewPending, domainwf.StatusJEApproved, "officer:7", "looks good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NewStatus != domainwf.StatusJEApproved {
		t.Errorf("expected JE_APPROVED, got %s", result.NewStatus)
	}

	rec := progressions.records[0]
	if rec.Trigger != string(domainwf.TriggerApprove) {
		t.Errorf("trigger = %s, want APPROVE", rec.Trigger)
	}
	if rec.Auto {
		t.Error("officer transitions must be recorded as manual")
	}
	if rec.FromOfficerID == nil || *rec.FromOfficerID != officerID {
		t.Errorf("from officer = %v, want %d", rec.FromOfficerID, officerID)
	}
}

func TestEngineTransitionIllegal(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusJEReviewPending))

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	_, err := engine.Transition(context.Background(), 1, domainwf.StatusJEReviewPending, domainwf.StatusCompleted, "officer:7", "")
	if !errors.Is(err, domainwf.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestEngineCompleteSignature(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusEE2SignPending))
	progressions := &mockProgressionRepo{}

	engine := NewEngine(apps, &mockAssignmentRepo{}, progressions, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	result, err := engine.CompleteSignature(context.Background(), 1, "officer:8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewStatus != domainwf.StatusEE2SignCompleted {
		t.Errorf("expected EE2_SIGN_COMPLETED, got %s", result.NewStatus)
	}

	rec := progressions.records[0]
	if rec.Trigger != string(domainwf.TriggerSign) {
		t.Errorf("trigger = %s, want SIGN", rec.Trigger)
	}
	if rec.Auto {
		t.Error("signature completion must be recorded as manual")
	}
}

func TestEngineIssueCertificate(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusCE2FinalPending))

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	result, err := engine.IssueCertificate(context.Background(), 1, "officer:9", "final approval granted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewStatus != domainwf.StatusCertificateIssued {
		t.Errorf("expected CERTIFICATE_ISSUED, got %s", result.NewStatus)
	}
	if apps.certificateAt[1].IsZero() {
		t.Error("expected certificate_issued_at to be stamped")
	}
}

func TestEngineCompleteWorkflow(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusCertificateIssued))

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop())

	result, err := engine.CompleteWorkflow(context.Background(), 1, "officer:9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewStatus != domainwf.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", result.NewStatus)
	}
}

func TestEngineEmitsStatusChangedEvent(t *testing.T) {
	apps := newMockAppRepo(testApp(1, domainwf.StatusSubmitted))
	selector := &mockSelector{officer: testOfficer(7, entity.RoleJEArchitect)}
	sink := &mockEventSink{}

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, selector, &mockTxManager{}, zap.NewNop(),
		WithDispatcher(sink))

	if _, err := engine.SubmitToJuniorEngineer(context.Background(), 1, "applicant:asha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := sink.ofType(event.TypeStatusChanged)
	if len(changed) != 1 {
		t.Fatalf("expected 1 status-changed event, got %d", len(changed))
	}
	evt := changed[0]
	if evt.GetString("from_status") != "SUBMITTED" || evt.GetString("to_status") != "JE_REVIEW_PENDING" {
		t.Errorf("event payload %s -> %s, want SUBMITTED -> JE_REVIEW_PENDING",
			evt.GetString("from_status"), evt.GetString("to_status"))
	}
	if evt.GetString("application_number") != "PMC-2026-TESTTEST" {
		t.Errorf("event application_number = %s", evt.GetString("application_number"))
	}
}

func TestEngineEmitsRejectionEvent(t *testing.T) {
	officerID := int64(7)
	app := testApp(1, domainwf.StatusJEReviewPending)
	app.AssignedOfficerID = &officerID
	apps := newMockAppRepo(app)
	sink := &mockEventSink{}

	engine := NewEngine(apps, &mockAssignmentRepo{}, &mockProgressionRepo{}, &mockSelector{}, &mockTxManager{}, zap.NewNop(),
		WithDispatcher(sink))

	if _, err := engine.Transition(context.Background(), 1, domainwf.StatusJEReviewPending, domainwf.StatusJERejected, "officer:7", "incomplete documents"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(sink.ofType(event.TypeStageRejected)); got != 1 {
		t.Errorf("expected 1 stage-rejected event, got %d", got)
	}
}
