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
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/persistence/sqlite"
)

// AssignmentHistoryRepository implements port.AssignmentHistoryRepository.
// Records are append-only; nothing here updates or deletes.
type AssignmentHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssignmentHistoryRepository creates a new assignment history repository
func NewAssignmentHistoryRepository(db *sql.DB, logger *zap.Logger) port.AssignmentHistoryRepository {
	return &AssignmentHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an assignment record
func (r *AssignmentHistoryRepository) Create(ctx context.Context, record *entity.AssignmentRecord) error {
	query := `
		INSERT INTO assignment_history (
			application_id, officer_id, role, assigned_by, reason, assigned_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		record.ApplicationID,
		record.OfficerID,
		string(record.Role),
		record.AssignedBy,
		record.Reason,
		record.AssignedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create assignment record", zap.Error(err))
		return fmt.Errorf("failed to create assignment record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetByApplicationID retrieves an application's full assignment trail in order
func (r *AssignmentHistoryRepository) GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.AssignmentRecord, error) {
	query := `
		SELECT id, application_id, officer_id, role, assigned_by, reason, assigned_at
		FROM assignment_history
		WHERE application_id = ?
		ORDER BY assigned_at ASC, id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to get assignment history", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get assignment history: %w", err)
	}
	defer rows.Close()

	var records []*entity.AssignmentRecord
	for rows.Next() {
		record, err := scanAssignmentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Latest retrieves the most recent assignment record for an application
func (r *AssignmentHistoryRepository) Latest(ctx context.Context, applicationID int64) (*entity.AssignmentRecord, error) {
	query := `
		SELECT id, application_id, officer_id, role, assigned_by, reason, assigned_at
		FROM assignment_history
		WHERE application_id = ?
		ORDER BY assigned_at DESC, id DESC
		LIMIT 1
	`

	record, err := scanAssignmentRecord(r.getExecutor(ctx).QueryRowContext(ctx, query, applicationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get latest assignment", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get latest assignment: %w", err)
	}
	return record, nil
}

// LatestAssignmentTimes returns each officer's most recent assignment time.
// Officers who were never assigned are absent from the returned map.
func (r *AssignmentHistoryRepository) LatestAssignmentTimes(ctx context.Context, officerIDs []int64) (map[int64]time.Time, error) {
	times := make(map[int64]time.Time, len(officerIDs))
	if len(officerIDs) == 0 {
		return times, nil
	}

	placeholders := strings.Repeat("?,", len(officerIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT officer_id, MAX(assigned_at)
		FROM assignment_history
		WHERE officer_id IN (%s)
		GROUP BY officer_id
	`, placeholders)

	args := make([]interface{}, 0, len(officerIDs))
	for _, id := range officerIDs {
		args = append(args, id)
	}

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get latest assignment times", zap.Error(err))
		return nil, fmt.Errorf("failed to get latest assignment times: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var officerID int64
		var assignedAt time.Time
		if err := rows.Scan(&officerID, &assignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment time: %w", err)
		}
		times[officerID] = assignedAt
	}

	return times, rows.Err()
}

func scanAssignmentRecord(row rowScanner) (*entity.AssignmentRecord, error) {
	var record entity.AssignmentRecord
	var role string
	var reason sql.NullString

	err := row.Scan(
		&record.ID,
		&record.ApplicationID,
		&record.OfficerID,
		&role,
		&record.AssignedBy,
		&reason,
		&record.AssignedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Role = entity.OfficerRole(role)
	record.Reason = reason.String
	return &record, nil
}

// getExecutor returns appropriate executor based on context
func (r *AssignmentHistoryRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.AssignmentHistoryRepository = (*AssignmentHistoryRepository)(nil)
