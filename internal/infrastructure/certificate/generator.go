package certificate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
)

// Generator implements port.DocumentGenerator with fpdf. A certificates table
// row per (application, kind) makes generation idempotent: regenerating an
// already issued document returns the recorded path without touching disk.
type Generator struct {
	certs     port.CertificateRepository
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerator creates a PDF document generator writing into outputDir
func NewGenerator(certs port.CertificateRepository, outputDir string, logger *zap.Logger) *Generator {
	return &Generator{
		certs:     certs,
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateCertificate renders the registration certificate PDF
func (g *Generator) GenerateCertificate(ctx context.Context, app *entity.Application) (string, error) {
	return g.generate(ctx, app, entity.CertificateKindPermit)
}

// GenerateReceipt renders the payment receipt PDF
func (g *Generator) GenerateReceipt(ctx context.Context, app *entity.Application) (string, error) {
	return g.generate(ctx, app, entity.CertificateKindReceipt)
}

func (g *Generator) generate(ctx context.Context, app *entity.Application, kind string) (string, error) {
	existing, err := g.certs.GetByApplicationID(ctx, app.ID, kind)
	if err != nil {
		return "", fmt.Errorf("check existing document: %w", err)
	}
	if existing != nil {
		g.logger.Info("Document already generated",
			zap.Int64("application_id", app.ID),
			zap.String("kind", kind),
			zap.String("path", existing.FilePath))
		return existing.FilePath, nil
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("%s_%s.pdf", app.ApplicationNumber, kind))
	if err := g.render(app, kind, path); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	record := &entity.Certificate{
		ApplicationID: app.ID,
		Kind:          kind,
		FilePath:      path,
		GeneratedAt:   g.now(),
	}
	if err := g.certs.Create(ctx, record); err != nil {
		return "", fmt.Errorf("record generated document: %w", err)
	}

	g.logger.Info("Document generated",
		zap.Int64("application_id", app.ID),
		zap.String("kind", kind),
		zap.String("path", path))
	return path, nil
}

func (g *Generator) render(app *entity.Application, kind, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf render panic: %v", r)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Pune Municipal Corporation", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 9, title(kind), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(60, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	line("Application Number", app.ApplicationNumber)
	line("Applicant", app.ApplicantName)
	line("Position Category", string(app.PositionCategory))
	if kind == entity.CertificateKindReceipt && app.PaymentCompletedAt != nil {
		line("Payment Date", app.PaymentCompletedAt.Format("02 Jan 2006"))
	}
	line("Issued On", g.now().Format("02 Jan 2006"))

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, footer(kind), "", "L", false)

	if pdf.Error() != nil {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(path)
}

func title(kind string) string {
	if kind == entity.CertificateKindReceipt {
		return "Payment Receipt"
	}
	return "Certificate of Registration"
}

func footer(kind string) string {
	if kind == entity.CertificateKindReceipt {
		return "This receipt acknowledges payment of the registration fee. Retain it for your records."
	}
	return "This certifies that the above applicant is registered with the Pune Municipal Corporation for the stated position. The registration is subject to the corporation's prevailing rules."
}

// Verify interface compliance
var _ port.DocumentGenerator = (*Generator)(nil)
