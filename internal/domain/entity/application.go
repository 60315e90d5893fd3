package entity

import (
	"time"

	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// StageDecision records one officer's approve/reject decision at a review stage
type StageDecision struct {
	Approved *bool      `json:"approved,omitempty"`
	Remarks  string     `json:"remarks,omitempty"`
	ActedBy  *int64     `json:"acted_by,omitempty"`
	ActedAt  *time.Time `json:"acted_at,omitempty"`
}

// Application is the unit of work routed through the permit workflow.
// It carries exactly one authoritative status and at most one assigned officer.
type Application struct {
	ID                int64            `json:"id"`
	ApplicationNumber string           `json:"application_number"`
	ApplicantName     string           `json:"applicant_name"`
	ApplicantEmail    string           `json:"applicant_email"`
	PositionCategory  PositionCategory `json:"position_category"`
	Status            workflow.Status  `json:"status"`
	AssignedOfficerID *int64           `json:"assigned_officer_id,omitempty"`

	JEDecision    StageDecision `json:"je_decision"`
	AEDecision    StageDecision `json:"ae_decision"`
	EE1Decision   StageDecision `json:"ee1_decision"`
	CE1Decision   StageDecision `json:"ce1_decision"`
	ClerkDecision StageDecision `json:"clerk_decision"`
	EE2Decision   StageDecision `json:"ee2_decision"`
	CE2Decision   StageDecision `json:"ce2_decision"`

	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	PaymentCompletedAt  *time.Time `json:"payment_completed_at,omitempty"`
	CertificateIssuedAt *time.Time `json:"certificate_issued_at,omitempty"`

	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Decision returns the recorded decision for a review stage
func (a *Application) Decision(stage StageCode) StageDecision {
	switch stage {
	case StageJE:
		return a.JEDecision
	case StageAE:
		return a.AEDecision
	case StageEE1:
		return a.EE1Decision
	case StageCE1:
		return a.CE1Decision
	case StageClerk:
		return a.ClerkDecision
	case StageEE2:
		return a.EE2Decision
	case StageCE2:
		return a.CE2Decision
	}
	return StageDecision{}
}
