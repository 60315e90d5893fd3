package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/port"
)

const registerSheet = "Applications"

var registerHeaders = []string{
	"Application Number", "Applicant", "Email", "Position Category",
	"Status", "Submitted At", "Payment Completed At", "Certificate Issued At",
}

// RegisterExporter renders the application register as an XLSX workbook
type RegisterExporter struct {
	apps   port.ApplicationRepository
	logger *zap.Logger
}

// NewRegisterExporter creates the register exporter
func NewRegisterExporter(apps port.ApplicationRepository, logger *zap.Logger) *RegisterExporter {
	return &RegisterExporter{
		apps:   apps,
		logger: logger,
	}
}

// Export writes up to limit applications into an XLSX workbook
func (e *RegisterExporter) Export(ctx context.Context, limit, offset int) ([]byte, error) {
	apps, err := e.apps.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), registerSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if err := e.writeHeader(f); err != nil {
		return nil, err
	}

	for i, app := range apps {
		row := i + 2
		values := []interface{}{
			app.ApplicationNumber,
			app.ApplicantName,
			app.ApplicantEmail,
			string(app.PositionCategory),
			string(app.Status),
			timeCell(app.SubmittedAt),
			timeCell(app.PaymentCompletedAt),
			timeCell(app.CertificateIssuedAt),
		}
		for col, value := range values {
			if err := writeCell(f, col+1, row, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("Register exported", zap.Int("applications", len(apps)))
	return buf.Bytes(), nil
}

func (e *RegisterExporter) writeHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(registerHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(registerSheet, "A1", lastCol+"1", style); err != nil {
		return err
	}
	if err := f.SetColWidth(registerSheet, "A", lastCol, 24); err != nil {
		return err
	}

	for col, header := range registerHeaders {
		if err := writeCell(f, col+1, 1, header); err != nil {
			return err
		}
	}
	return nil
}

func writeCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(registerSheet, cell, value)
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
