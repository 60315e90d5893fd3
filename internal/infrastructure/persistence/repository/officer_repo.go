package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/persistence/sqlite"
)

// OfficerRepository implements port.OfficerRepository
type OfficerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOfficerRepository creates a new officer repository
func NewOfficerRepository(db *sql.DB, logger *zap.Logger) port.OfficerRepository {
	return &OfficerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new officer
func (r *OfficerRepository) Create(ctx context.Context, officer *entity.Officer) error {
	query := `
		INSERT INTO officers (name, email, role, active, priority)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		officer.Name,
		officer.Email,
		string(officer.Role),
		officer.Active,
		officer.Priority,
	)
	if err != nil {
		r.logger.Error("Failed to create officer", zap.Error(err))
		return fmt.Errorf("failed to create officer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	officer.ID = id
	return nil
}

// GetByID retrieves an officer by ID
func (r *OfficerRepository) GetByID(ctx context.Context, id int64) (*entity.Officer, error) {
	query := `
		SELECT id, name, email, role, active, priority, created_at, updated_at
		FROM officers
		WHERE id = ?
	`

	officer, err := scanOfficer(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get officer by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get officer: %w", err)
	}
	return officer, nil
}

// FindActiveByRole retrieves all active officers holding a role
func (r *OfficerRepository) FindActiveByRole(ctx context.Context, role entity.OfficerRole) ([]*entity.Officer, error) {
	query := `
		SELECT id, name, email, role, active, priority, created_at, updated_at
		FROM officers
		WHERE role = ? AND active = 1
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, string(role))
	if err != nil {
		r.logger.Error("Failed to find officers by role", zap.String("role", string(role)), zap.Error(err))
		return nil, fmt.Errorf("failed to find officers: %w", err)
	}
	defer rows.Close()

	var officers []*entity.Officer
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, officer)
	}

	return officers, rows.Err()
}

// SetActive toggles an officer in or out of the assignment pool
func (r *OfficerRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE officers SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, active, id)
	if err != nil {
		r.logger.Error("Failed to set officer active flag", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set officer active flag: %w", err)
	}
	return nil
}

// List retrieves officers with pagination
func (r *OfficerRepository) List(ctx context.Context, limit, offset int) ([]*entity.Officer, error) {
	query := `
		SELECT id, name, email, role, active, priority, created_at, updated_at
		FROM officers
		ORDER BY role, id
		LIMIT ? OFFSET ?
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list officers", zap.Error(err))
		return nil, fmt.Errorf("failed to list officers: %w", err)
	}
	defer rows.Close()

	var officers []*entity.Officer
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, officer)
	}

	return officers, rows.Err()
}

func scanOfficer(row rowScanner) (*entity.Officer, error) {
	var officer entity.Officer
	var role string

	err := row.Scan(
		&officer.ID,
		&officer.Name,
		&officer.Email,
		&role,
		&officer.Active,
		&officer.Priority,
		&officer.CreatedAt,
		&officer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	officer.Role = entity.OfficerRole(role)
	return &officer, nil
}

// getExecutor returns appropriate executor based on context
func (r *OfficerRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.OfficerRepository = (*OfficerRepository)(nil)
