package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildingHasRoom(t *testing.T) {
	gym := Building{Name: "Gym", Rooms: []string{"1", "2"}}

	assert.True(t, gym.HasRoom("1"))
	assert.True(t, gym.HasRoom("2"))
	assert.False(t, gym.HasRoom("9"))
	assert.False(t, gym.HasRoom(""))
}

func TestRoleValidAndMaintenanceCapable(t *testing.T) {
	for _, r := range []Role{RoleRequester, RoleMaintenance, RoleAdmin, RoleSuperAdmin} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("manager").Valid())

	assert.True(t, RoleMaintenance.MaintenanceCapable())
	assert.True(t, RoleAdmin.MaintenanceCapable())
	assert.False(t, RoleRequester.MaintenanceCapable())
}
