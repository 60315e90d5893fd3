package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/persistence/sqlite"
)

// ProgressionHistoryRepository implements port.ProgressionHistoryRepository.
// Records are append-only; nothing here updates or deletes.
type ProgressionHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressionHistoryRepository creates a new progression history repository
func NewProgressionHistoryRepository(db *sql.DB, logger *zap.Logger) port.ProgressionHistoryRepository {
	return &ProgressionHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a progression record
func (r *ProgressionHistoryRepository) Create(ctx context.Context, record *entity.ProgressionRecord) error {
	query := `
		INSERT INTO progression_history (
			application_id, from_status, to_status, from_officer_id, to_officer_id,
			trigger_action, comments, auto, actor, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		record.ApplicationID,
		string(record.FromStatus),
		string(record.ToStatus),
		record.FromOfficerID,
		record.ToOfficerID,
		record.Trigger,
		record.Comments,
		record.Auto,
		record.Actor,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create progression record", zap.Error(err))
		return fmt.Errorf("failed to create progression record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetByApplicationID retrieves an application's full progression trail in order
func (r *ProgressionHistoryRepository) GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.ProgressionRecord, error) {
	query := `
		SELECT id, application_id, from_status, to_status, from_officer_id, to_officer_id,
			trigger_action, comments, auto, actor, created_at
		FROM progression_history
		WHERE application_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to get progression history", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get progression history: %w", err)
	}
	defer rows.Close()

	var records []*entity.ProgressionRecord
	for rows.Next() {
		record, err := scanProgressionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progression record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func scanProgressionRecord(row rowScanner) (*entity.ProgressionRecord, error) {
	var record entity.ProgressionRecord
	var fromStatus, toStatus string
	var fromOfficer, toOfficer sql.NullInt64
	var comments sql.NullString

	err := row.Scan(
		&record.ID,
		&record.ApplicationID,
		&fromStatus,
		&toStatus,
		&fromOfficer,
		&toOfficer,
		&record.Trigger,
		&comments,
		&record.Auto,
		&record.Actor,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.FromStatus = workflow.Status(fromStatus)
	record.ToStatus = workflow.Status(toStatus)
	if fromOfficer.Valid {
		record.FromOfficerID = &fromOfficer.Int64
	}
	if toOfficer.Valid {
		record.ToOfficerID = &toOfficer.Int64
	}
	record.Comments = comments.String
	return &record, nil
}

// getExecutor returns appropriate executor based on context
func (r *ProgressionHistoryRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ProgressionHistoryRepository = (*ProgressionHistoryRepository)(nil)
