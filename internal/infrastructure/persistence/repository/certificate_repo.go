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

// CertificateRepository implements port.CertificateRepository
type CertificateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *sql.DB, logger *zap.Logger) port.CertificateRepository {
	return &CertificateRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a generated document. The (application_id, kind) pair is
// unique, which is what makes generation idempotent.
func (r *CertificateRepository) Create(ctx context.Context, cert *entity.Certificate) error {
	query := `
		INSERT INTO certificates (application_id, kind, file_path, generated_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		cert.ApplicationID,
		cert.Kind,
		cert.FilePath,
		cert.GeneratedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create certificate record", zap.Error(err))
		return fmt.Errorf("failed to create certificate record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	cert.ID = id
	return nil
}

// GetByApplicationID retrieves the document record of one kind, if generated
func (r *CertificateRepository) GetByApplicationID(ctx context.Context, applicationID int64, kind string) (*entity.Certificate, error) {
	query := `
		SELECT id, application_id, kind, file_path, generated_at
		FROM certificates
		WHERE application_id = ? AND kind = ?
	`

	var cert entity.Certificate
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, applicationID, kind).Scan(
		&cert.ID,
		&cert.ApplicationID,
		&cert.Kind,
		&cert.FilePath,
		&cert.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get certificate record", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get certificate record: %w", err)
	}
	return &cert, nil
}

// getExecutor returns appropriate executor based on context
func (r *CertificateRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.CertificateRepository = (*CertificateRepository)(nil)
