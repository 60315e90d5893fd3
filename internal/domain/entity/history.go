package entity

import (
	"time"

	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// AssignmentRecord is one append-only officer<->application binding. The most
// recent record for an application determines its current assignee.
type AssignmentRecord struct {
	ID            int64       `json:"id"`
	ApplicationID int64       `json:"application_id"`
	OfficerID     int64       `json:"officer_id"`
	Role          OfficerRole `json:"role"`
	AssignedBy    string      `json:"assigned_by"`
	Reason        string      `json:"reason,omitempty"`
	AssignedAt    time.Time   `json:"assigned_at"`
}

// ProgressionRecord is one append-only status transition. For any application
// the records form a path through the status machine's transition table.
type ProgressionRecord struct {
	ID            int64           `json:"id"`
	ApplicationID int64           `json:"application_id"`
	FromStatus    workflow.Status `json:"from_status"`
	ToStatus      workflow.Status `json:"to_status"`
	FromOfficerID *int64          `json:"from_officer_id,omitempty"`
	ToOfficerID   *int64          `json:"to_officer_id,omitempty"`
	Trigger       string          `json:"trigger"`
	Comments      string          `json:"comments,omitempty"`
	Auto          bool            `json:"auto"`
	Actor         string          `json:"actor"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Certificate is the issued-certificate record that makes PDF generation
// idempotent: one row per application, written when the document is rendered.
type Certificate struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	Kind          string    `json:"kind"`
	FilePath      string    `json:"file_path"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Certificate kinds
const (
	CertificateKindPermit  = "PERMIT"
	CertificateKindReceipt = "PAYMENT_RECEIPT"
)
