package assignment

import (
	"testing"

	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name     string
		stage    StageRole
		category entity.PositionCategory
		expected entity.OfficerRole
		ok       bool
	}{
		{"junior architect", StageRoleJunior, entity.CategoryArchitect, entity.RoleJEArchitect, true},
		{"junior structural", StageRoleJunior, entity.CategoryStructuralEngineer, entity.RoleJEStructural, true},
		{"junior licence", StageRoleJunior, entity.CategoryLicenceEngineer, entity.RoleJELicence, true},
		{"junior supervisor1", StageRoleJunior, entity.CategorySupervisor1, entity.RoleJESupervisor1, true},
		{"junior supervisor2", StageRoleJunior, entity.CategorySupervisor2, entity.RoleJESupervisor2, true},
		{"assistant architect", StageRoleAssistant, entity.CategoryArchitect, entity.RoleAEArchitect, true},
		{"assistant supervisor2", StageRoleAssistant, entity.CategorySupervisor2, entity.RoleAESupervisor2, true},
		{"executive ignores category", StageRoleExecutive, entity.CategoryStructuralEngineer, entity.RoleExecutiveEngineer, true},
		{"city ignores category", StageRoleCity, entity.CategorySupervisor1, entity.RoleCityEngineer, true},
		{"clerk ignores category", StageRoleClerk, entity.CategoryLicenceEngineer, entity.RoleClerk, true},
		{"unknown category", StageRoleJunior, entity.PositionCategory("PLUMBER"), "", false},
		{"unknown stage", StageRole("UNKNOWN"), entity.CategoryArchitect, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := ResolveRole(tt.stage, tt.category)
			if ok != tt.ok {
				t.Fatalf("ResolveRole() ok = %v, want %v", ok, tt.ok)
			}
			if role != tt.expected {
				t.Errorf("ResolveRole() = %s, want %s", role, tt.expected)
			}
		})
	}
}

func TestRoleForStatus(t *testing.T) {
	tests := []struct {
		status   workflow.Status
		category entity.PositionCategory
		expected entity.OfficerRole
		ok       bool
	}{
		{workflow.StatusJEReviewPending, entity.CategoryArchitect, entity.RoleJEArchitect, true},
		{workflow.StatusAEReviewPending, entity.CategoryLicenceEngineer, entity.RoleAELicence, true},
		{workflow.StatusEE1ReviewPending, entity.CategoryArchitect, entity.RoleExecutiveEngineer, true},
		{workflow.StatusCE1ReviewPending, entity.CategoryArchitect, entity.RoleCityEngineer, true},
		{workflow.StatusClerkPending, entity.CategorySupervisor1, entity.RoleClerk, true},
		{workflow.StatusEE2SignPending, entity.CategorySupervisor2, entity.RoleExecutiveEngineer, true},
		{workflow.StatusCE2FinalPending, entity.CategoryStructuralEngineer, entity.RoleCityEngineer, true},
		// statuses without an assignee have no role requirement
		{workflow.StatusDraft, entity.CategoryArchitect, "", false},
		{workflow.StatusPaymentPending, entity.CategoryArchitect, "", false},
		{workflow.StatusCompleted, entity.CategoryArchitect, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			role, ok := RoleForStatus(tt.status, tt.category)
			if ok != tt.ok {
				t.Fatalf("RoleForStatus() ok = %v, want %v", ok, tt.ok)
			}
			if role != tt.expected {
				t.Errorf("RoleForStatus() = %s, want %s", role, tt.expected)
			}
		})
	}
}
