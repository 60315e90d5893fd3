package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/persistence/sqlite"
)

// stageColumns maps a review stage to its column prefix. Stage decisions are
// flattened into the applications row, four columns per stage.
var stageColumns = map[entity.StageCode]string{
	entity.StageJE:    "je",
	entity.StageAE:    "ae",
	entity.StageEE1:   "ee1",
	entity.StageCE1:   "ce1",
	entity.StageClerk: "clerk",
	entity.StageEE2:   "ee2",
	entity.StageCE2:   "ce2",
}

const applicationColumns = `
	id, application_number, applicant_name, applicant_email,
	position_category, status, assigned_officer_id,
	je_approved, je_remarks, je_acted_by, je_acted_at,
	ae_approved, ae_remarks, ae_acted_by, ae_acted_at,
	ee1_approved, ee1_remarks, ee1_acted_by, ee1_acted_at,
	ce1_approved, ce1_remarks, ce1_acted_by, ce1_acted_at,
	clerk_approved, clerk_remarks, clerk_acted_by, clerk_acted_at,
	ee2_approved, ee2_remarks, ee2_acted_by, ee2_acted_at,
	ce2_approved, ce2_remarks, ce2_acted_by, ce2_acted_at,
	submitted_at, payment_completed_at, certificate_issued_at,
	created_by, updated_by, created_at, updated_at`

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) port.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	query := `
		INSERT INTO applications (
			application_number, applicant_name, applicant_email,
			position_category, status, created_by, updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		app.ApplicationNumber,
		app.ApplicantName,
		app.ApplicantEmail,
		string(app.PositionCategory),
		string(app.Status),
		app.CreatedBy,
		app.UpdatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	app.ID = id
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE id = ?`

	app, err := scanApplication(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get application by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// GetByNumber retrieves an application by its registration number
func (r *ApplicationRepository) GetByNumber(ctx context.Context, number string) (*entity.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE application_number = ?`

	app, err := scanApplication(r.getExecutor(ctx).QueryRowContext(ctx, query, number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get application by number", zap.String("number", number), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// List retrieves applications with pagination
func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*entity.Application, error) {
	query := `SELECT` + applicationColumns + `
		FROM applications
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// ListStalled retrieves unassigned applications in the given statuses,
// oldest first
func (r *ApplicationRepository) ListStalled(ctx context.Context, statuses []workflow.Status, limit int) ([]*entity.Application, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT`+applicationColumns+`
		FROM applications
		WHERE assigned_officer_id IS NULL AND status IN (%s)
		ORDER BY updated_at ASC
		LIMIT ?`, placeholders)

	args := make([]interface{}, 0, len(statuses)+1)
	for _, status := range statuses {
		args = append(args, string(status))
	}
	args = append(args, limit)

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list stalled applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list stalled applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// TransitionStatus moves the application from one status to another with an
// optimistic guard on the expected current status. The assignee column is
// always written, so stale assignees never survive a transition. Returns
// false when the row was not in the expected status.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id int64, from, to workflow.Status, assignee *int64, actor string) (bool, error) {
	query := `
		UPDATE applications
		SET status = ?, assigned_officer_id = ?, updated_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		string(to), assignee, actor, id, string(from))
	if err != nil {
		r.logger.Error("Failed to transition status",
			zap.Int64("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return false, fmt.Errorf("failed to transition status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// SetStageDecision records one officer's decision in the stage's columns
func (r *ApplicationRepository) SetStageDecision(ctx context.Context, id int64, stage entity.StageCode, d entity.StageDecision) error {
	prefix, ok := stageColumns[stage]
	if !ok {
		return fmt.Errorf("unknown review stage: %s", stage)
	}

	query := fmt.Sprintf(`
		UPDATE applications
		SET %[1]s_approved = ?, %[1]s_remarks = ?, %[1]s_acted_by = ?, %[1]s_acted_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, prefix)

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		d.Approved, d.Remarks, d.ActedBy, d.ActedAt, id)
	if err != nil {
		r.logger.Error("Failed to set stage decision",
			zap.Int64("id", id),
			zap.String("stage", string(stage)),
			zap.Error(err))
		return fmt.Errorf("failed to set stage decision: %w", err)
	}
	return nil
}

// SetSubmittedAt stamps the submission time
func (r *ApplicationRepository) SetSubmittedAt(ctx context.Context, id int64, t time.Time) error {
	return r.setTimestamp(ctx, id, "submitted_at", t)
}

// SetPaymentCompletedAt stamps the payment completion time
func (r *ApplicationRepository) SetPaymentCompletedAt(ctx context.Context, id int64, t time.Time) error {
	return r.setTimestamp(ctx, id, "payment_completed_at", t)
}

// SetCertificateIssuedAt stamps the certificate issuance time
func (r *ApplicationRepository) SetCertificateIssuedAt(ctx context.Context, id int64, t time.Time) error {
	return r.setTimestamp(ctx, id, "certificate_issued_at", t)
}

func (r *ApplicationRepository) setTimestamp(ctx context.Context, id int64, column string, t time.Time) error {
	query := fmt.Sprintf(`UPDATE applications SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, column)

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, t, id)
	if err != nil {
		r.logger.Error("Failed to set timestamp",
			zap.Int64("id", id),
			zap.String("column", column),
			zap.Error(err))
		return fmt.Errorf("failed to set %s: %w", column, err)
	}
	return nil
}

// OpenCountByOfficer counts non-terminal applications per assigned officer.
// Officers with no open applications are absent from the returned map.
func (r *ApplicationRepository) OpenCountByOfficer(ctx context.Context, officerIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(officerIDs))
	if len(officerIDs) == 0 {
		return counts, nil
	}

	placeholders := strings.Repeat("?,", len(officerIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT assigned_officer_id, COUNT(*)
		FROM applications
		WHERE assigned_officer_id IN (%s) AND status NOT IN (?, ?)
		GROUP BY assigned_officer_id
	`, placeholders)

	args := make([]interface{}, 0, len(officerIDs)+2)
	for _, id := range officerIDs {
		args = append(args, id)
	}
	args = append(args, string(workflow.StatusCompleted), string(workflow.StatusRejected))

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to count open applications", zap.Error(err))
		return nil, fmt.Errorf("failed to count open applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var officerID int64
		var count int
		if err := rows.Scan(&officerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan open count: %w", err)
		}
		counts[officerID] = count
	}

	return counts, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*entity.Application, error) {
	var app entity.Application
	var positionCategory, status string
	var assignee sql.NullInt64
	var decisions [7]struct {
		approved sql.NullBool
		remarks  sql.NullString
		actedBy  sql.NullInt64
		actedAt  sql.NullTime
	}
	var submittedAt, paymentCompletedAt, certificateIssuedAt sql.NullTime

	dest := []interface{}{
		&app.ID, &app.ApplicationNumber, &app.ApplicantName, &app.ApplicantEmail,
		&positionCategory, &status, &assignee,
	}
	for i := range decisions {
		dest = append(dest,
			&decisions[i].approved, &decisions[i].remarks,
			&decisions[i].actedBy, &decisions[i].actedAt)
	}
	dest = append(dest,
		&submittedAt, &paymentCompletedAt, &certificateIssuedAt,
		&app.CreatedBy, &app.UpdatedBy, &app.CreatedAt, &app.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	app.PositionCategory = entity.PositionCategory(positionCategory)
	app.Status = workflow.Status(status)
	if assignee.Valid {
		app.AssignedOfficerID = &assignee.Int64
	}

	targets := []*entity.StageDecision{
		&app.JEDecision, &app.AEDecision, &app.EE1Decision, &app.CE1Decision,
		&app.ClerkDecision, &app.EE2Decision, &app.CE2Decision,
	}
	for i, target := range targets {
		d := decisions[i]
		if d.approved.Valid {
			target.Approved = &d.approved.Bool
		}
		target.Remarks = d.remarks.String
		if d.actedBy.Valid {
			target.ActedBy = &d.actedBy.Int64
		}
		if d.actedAt.Valid {
			target.ActedAt = &d.actedAt.Time
		}
	}

	if submittedAt.Valid {
		app.SubmittedAt = &submittedAt.Time
	}
	if paymentCompletedAt.Valid {
		app.PaymentCompletedAt = &paymentCompletedAt.Time
	}
	if certificateIssuedAt.Valid {
		app.CertificateIssuedAt = &certificateIssuedAt.Time
	}

	return &app, nil
}

// getExecutor returns appropriate executor based on context
func (r *ApplicationRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
