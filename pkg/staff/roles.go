package staff

// Role represents one tier of the firm hierarchy
type Role string

const (
	RoleManagingPartner Role = "Managing Partner"
	RoleSeniorPartner   Role = "Senior Partner"
	RoleJuniorPartner   Role = "Junior Partner"
	RoleSeniorAssociate Role = "Senior Associate"
	RoleJuniorAssociate Role = "Junior Associate"
	RoleParalegal       Role = "Paralegal"
)

// roleInfo fixes the level and population cap of a tier. The table is
// immutable; lookups are pure functions over it.
type roleInfo struct {
	level int
	cap   int
}

var hierarchy = map[Role]roleInfo{
	RoleManagingPartner: {level: 6, cap: 1},
	RoleSeniorPartner:   {level: 5, cap: 3},
	RoleJuniorPartner:   {level: 4, cap: 5},
	RoleSeniorAssociate: {level: 3, cap: 10},
	RoleJuniorAssociate: {level: 2, cap: 10},
	RoleParalegal:       {level: 1, cap: 10},
}

// AllRoles returns the six tiers ordered highest level first
func AllRoles() []Role {
	return []Role{
		RoleManagingPartner,
		RoleSeniorPartner,
		RoleJuniorPartner,
		RoleSeniorAssociate,
		RoleJuniorAssociate,
		RoleParalegal,
	}
}

// ValidRole reports whether s names a known tier
func ValidRole(s string) bool {
	_, ok := hierarchy[Role(s)]
	return ok
}

// LevelOf returns the tier's level (1=lowest, 6=highest), or 0 for unknown roles
func LevelOf(r Role) int {
	return hierarchy[r].level
}

// CapOf returns the tier's maximum concurrent active holders, or 0 for unknown roles
func CapOf(r Role) int {
	return hierarchy[r].cap
}
