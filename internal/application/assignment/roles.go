package assignment

import (
	"github.com/yashturmbekar/pmcrms/internal/domain/entity"
	"github.com/yashturmbekar/pmcrms/internal/domain/workflow"
)

// StageRole identifies the seniority level a boundary routes to. Junior and
// assistant levels resolve to one of ten position-specific roles; the rest
// map to a single fixed role.
type StageRole string

const (
	StageRoleJunior    StageRole = "JUNIOR_ENGINEER"
	StageRoleAssistant StageRole = "ASSISTANT_ENGINEER"
	StageRoleExecutive StageRole = "EXECUTIVE_ENGINEER"
	StageRoleCity      StageRole = "CITY_ENGINEER"
	StageRoleClerk     StageRole = "CLERK"
)

// juniorRoles is the fixed position-category to junior-engineer mapping
var juniorRoles = map[entity.PositionCategory]entity.OfficerRole{
	entity.CategoryArchitect:          entity.RoleJEArchitect,
	entity.CategoryStructuralEngineer: entity.RoleJEStructural,
	entity.CategoryLicenceEngineer:    entity.RoleJELicence,
	entity.CategorySupervisor1:        entity.RoleJESupervisor1,
	entity.CategorySupervisor2:        entity.RoleJESupervisor2,
}

// assistantRoles is the fixed position-category to assistant-engineer mapping
var assistantRoles = map[entity.PositionCategory]entity.OfficerRole{
	entity.CategoryArchitect:          entity.RoleAEArchitect,
	entity.CategoryStructuralEngineer: entity.RoleAEStructural,
	entity.CategoryLicenceEngineer:    entity.RoleAELicence,
	entity.CategorySupervisor1:        entity.RoleAESupervisor1,
	entity.CategorySupervisor2:        entity.RoleAESupervisor2,
}

// ResolveRole maps a stage role and position category to the concrete officer
// role eligible for the stage
func ResolveRole(stage StageRole, category entity.PositionCategory) (entity.OfficerRole, bool) {
	switch stage {
	case StageRoleJunior:
		role, ok := juniorRoles[category]
		return role, ok
	case StageRoleAssistant:
		role, ok := assistantRoles[category]
		return role, ok
	case StageRoleExecutive:
		return entity.RoleExecutiveEngineer, true
	case StageRoleCity:
		return entity.RoleCityEngineer, true
	case StageRoleClerk:
		return entity.RoleClerk, true
	}
	return "", false
}

// statusRoles maps each officer-held status to the stage role its assignee
// must hold, used for the role-consistency invariant check.
var statusRoles = map[workflow.Status]StageRole{
	workflow.StatusJEReviewPending:  StageRoleJunior,
	workflow.StatusAEReviewPending:  StageRoleAssistant,
	workflow.StatusEE1ReviewPending: StageRoleExecutive,
	workflow.StatusCE1ReviewPending: StageRoleCity,
	workflow.StatusClerkPending:     StageRoleClerk,
	workflow.StatusEE2SignPending:   StageRoleExecutive,
	workflow.StatusCE2FinalPending:  StageRoleCity,
}

// RoleForStatus returns the officer role the current assignee must hold for
// the given status, or false when the status carries no assignee
func RoleForStatus(status workflow.Status, category entity.PositionCategory) (entity.OfficerRole, bool) {
	stage, ok := statusRoles[status]
	if !ok {
		return "", false
	}
	return ResolveRole(stage, category)
}
