package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHierarchyLevelsAreTotalOrder(t *testing.T) {
	seen := make(map[int]Role)
	for _, r := range AllRoles() {
		level := LevelOf(r)
		assert.GreaterOrEqual(t, level, 1)
		assert.LessOrEqual(t, level, 6)
		_, dup := seen[level]
		assert.False(t, dup, "level %d assigned twice", level)
		seen[level] = r
	}
	assert.Len(t, seen, 6)
}

func TestRoleCaps(t *testing.T) {
	assert.Equal(t, 1, CapOf(RoleManagingPartner))
	assert.Equal(t, 3, CapOf(RoleSeniorPartner))
	assert.Equal(t, 5, CapOf(RoleJuniorPartner))
	assert.Equal(t, 10, CapOf(RoleSeniorAssociate))
	assert.Equal(t, 10, CapOf(RoleJuniorAssociate))
	assert.Equal(t, 10, CapOf(RoleParalegal))
}

func TestAllRolesOrderedByLevelDesc(t *testing.T) {
	roles := AllRoles()
	for i := 1; i < len(roles); i++ {
		assert.Greater(t, LevelOf(roles[i-1]), LevelOf(roles[i]))
	}
}

func TestUnknownRole(t *testing.T) {
	assert.False(t, ValidRole("Intern"))
	assert.Equal(t, 0, LevelOf(Role("Intern")))
	assert.Equal(t, 0, CapOf(Role("Intern")))
	assert.True(t, ValidRole("Managing Partner"))
}
