package port

import (
	"context"

	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// StageNotifier delivers a stage-change notification to the applicant.
// Implementations are best-effort: failures are logged by the caller and never
// affect the workflow transition that triggered them.
type StageNotifier interface {
	NotifyStage(ctx context.Context, app *entity.Application, newStatus workflow.Status, remarks string) error
}

// DocumentGenerator renders permit certificates and payment receipts.
// Generate must be idempotent per (application, kind): invoking it again for an
// already rendered document returns the existing file path.
type DocumentGenerator interface {
	GenerateCertificate(ctx context.Context, app *entity.Application) (string, error)
	GenerateReceipt(ctx context.Context, app *entity.Application) (string, error)
}
