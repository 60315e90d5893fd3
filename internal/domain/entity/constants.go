package entity

// PositionCategory is the licence type being applied for. It determines which
// junior/assistant engineer role reviews the application.
type PositionCategory string

const (
	CategoryArchitect          PositionCategory = "ARCHITECT"
	CategoryStructuralEngineer PositionCategory = "STRUCTURAL_ENGINEER"
	CategoryLicenceEngineer    PositionCategory = "LICENCE_ENGINEER"
	CategorySupervisor1        PositionCategory = "SUPERVISOR1"
	CategorySupervisor2        PositionCategory = "SUPERVISOR2"
)

// PositionCategories lists all licence types in display order
var PositionCategories = []PositionCategory{
	CategoryArchitect,
	CategoryStructuralEngineer,
	CategoryLicenceEngineer,
	CategorySupervisor1,
	CategorySupervisor2,
}

// IsValid returns true if the category is one of the fixed licence types
func (c PositionCategory) IsValid() bool {
	switch c {
	case CategoryArchitect, CategoryStructuralEngineer, CategoryLicenceEngineer,
		CategorySupervisor1, CategorySupervisor2:
		return true
	}
	return false
}

// String returns the string representation of the category
func (c PositionCategory) String() string {
	return string(c)
}

// OfficerRole is an officer's fixed reviewing role. Junior and assistant
// engineer roles are position-specific; the remaining roles review every
// category. Thirteen roles in total.
type OfficerRole string

const (
	RoleJEArchitect   OfficerRole = "JE_ARCHITECT"
	RoleJEStructural  OfficerRole = "JE_STRUCTURAL"
	RoleJELicence     OfficerRole = "JE_LICENCE"
	RoleJESupervisor1 OfficerRole = "JE_SUPERVISOR1"
	RoleJESupervisor2 OfficerRole = "JE_SUPERVISOR2"

	RoleAEArchitect   OfficerRole = "AE_ARCHITECT"
	RoleAEStructural  OfficerRole = "AE_STRUCTURAL"
	RoleAELicence     OfficerRole = "AE_LICENCE"
	RoleAESupervisor1 OfficerRole = "AE_SUPERVISOR1"
	RoleAESupervisor2 OfficerRole = "AE_SUPERVISOR2"

	RoleExecutiveEngineer OfficerRole = "EXECUTIVE_ENGINEER"
	RoleCityEngineer      OfficerRole = "CITY_ENGINEER"
	RoleClerk             OfficerRole = "CLERK"
)

var officerRoles = map[OfficerRole]bool{
	RoleJEArchitect:       true,
	RoleJEStructural:      true,
	RoleJELicence:         true,
	RoleJESupervisor1:     true,
	RoleJESupervisor2:     true,
	RoleAEArchitect:       true,
	RoleAEStructural:      true,
	RoleAELicence:         true,
	RoleAESupervisor1:     true,
	RoleAESupervisor2:     true,
	RoleExecutiveEngineer: true,
	RoleCityEngineer:      true,
	RoleClerk:             true,
}

// IsValid returns true if the role is one of the thirteen fixed officer roles
func (r OfficerRole) IsValid() bool {
	return officerRoles[r]
}

// String returns the string representation of the role
func (r OfficerRole) String() string {
	return string(r)
}

// StageCode identifies a review stage for per-stage decision bookkeeping
type StageCode string

const (
	StageJE    StageCode = "JE"
	StageAE    StageCode = "AE"
	StageEE1   StageCode = "EE1"
	StageCE1   StageCode = "CE1"
	StageClerk StageCode = "CLERK"
	StageEE2   StageCode = "EE2"
	StageCE2   StageCode = "CE2"
)
