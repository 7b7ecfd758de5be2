package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilitydesk/backend/internal/lifecycle"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

func orgActor(role models.Role, orgID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: role, OrganizationID: &orgID}
}

func testRequest(orgID, requestorID uuid.UUID, status string) *models.Request {
	return &models.Request{
		ID:             uuid.New(),
		OrganizationID: orgID,
		RequestorID:    requestorID,
		Status:         status,
	}
}

func TestListScopeRequester(t *testing.T) {
	org := uuid.New()
	a := orgActor(models.RoleRequester, org)

	scope, err := ListScope(a, nil)
	require.NoError(t, err)
	assert.False(t, scope.Empty)
	require.NotNil(t, scope.OrganizationID)
	assert.Equal(t, org, *scope.OrganizationID)
	require.NotNil(t, scope.RequestorID)
	assert.Equal(t, a.UserID, *scope.RequestorID)
}

func TestListScopeStaffOrgBound(t *testing.T) {
	org := uuid.New()
	for _, role := range []models.Role{models.RoleMaintenance, models.RoleAdmin} {
		scope, err := ListScope(orgActor(role, org), nil)
		require.NoError(t, err, string(role))
		require.NotNil(t, scope.OrganizationID, string(role))
		assert.Equal(t, org, *scope.OrganizationID)
		assert.Nil(t, scope.RequestorID)
	}
}

func TestListScopeNeverOmitsOrgForNonSuperAdmin(t *testing.T) {
	for _, role := range []models.Role{models.RoleRequester, models.RoleMaintenance, models.RoleAdmin} {
		_, err := ListScope(Actor{UserID: uuid.New(), Role: role}, nil)
		assert.Error(t, err, "actor with no org and role %s must be rejected", role)
	}
}

func TestListScopeSuperAdminWithoutSelectionIsEmpty(t *testing.T) {
	scope, err := ListScope(Actor{UserID: uuid.New(), Role: models.RoleSuperAdmin}, nil)
	require.NoError(t, err)
	assert.True(t, scope.Empty)
	assert.Nil(t, scope.OrganizationID)
}

func TestListScopeSuperAdminWithSelection(t *testing.T) {
	target := uuid.New()
	scope, err := ListScope(Actor{UserID: uuid.New(), Role: models.RoleSuperAdmin}, &target)
	require.NoError(t, err)
	assert.False(t, scope.Empty)
	require.NotNil(t, scope.OrganizationID)
	assert.Equal(t, target, *scope.OrganizationID)
}

func TestCapabilitiesCrossTenantIsZero(t *testing.T) {
	a := orgActor(models.RoleAdmin, uuid.New())
	req := testRequest(uuid.New(), uuid.New(), "pending")

	caps := Capabilities(a, req)
	assert.Equal(t, Capability{}, caps)
}

func TestCapabilitiesRequesterOwnRequest(t *testing.T) {
	org := uuid.New()
	a := orgActor(models.RoleRequester, org)
	req := testRequest(org, a.UserID, "pending")

	caps := Capabilities(a, req)
	assert.True(t, caps.View)
	assert.True(t, caps.Cancel)
	assert.True(t, caps.Message)
	assert.True(t, caps.Upload)
	assert.False(t, caps.Transition)
	assert.False(t, caps.Assign)
}

func TestCapabilitiesRequesterCannotCancelOncePastPending(t *testing.T) {
	org := uuid.New()
	a := orgActor(models.RoleRequester, org)
	for _, status := range []string{"approved", "in-progress", "completed", "cancelled"} {
		caps := Capabilities(a, testRequest(org, a.UserID, status))
		assert.False(t, caps.Cancel, status)
	}
}

func TestCapabilitiesRequesterOtherUsersRequest(t *testing.T) {
	org := uuid.New()
	a := orgActor(models.RoleRequester, org)
	req := testRequest(org, uuid.New(), "pending")

	assert.Equal(t, Capability{}, Capabilities(a, req))
}

func TestCapabilitiesStaff(t *testing.T) {
	org := uuid.New()
	req := testRequest(org, uuid.New(), "approved")
	for _, role := range []models.Role{models.RoleMaintenance, models.RoleAdmin} {
		caps := Capabilities(orgActor(role, org), req)
		assert.True(t, caps.Transition, string(role))
		assert.True(t, caps.Assign, string(role))
	}
	super := Actor{UserID: uuid.New(), Role: models.RoleSuperAdmin}
	caps := Capabilities(super, req)
	assert.True(t, caps.Transition)
	assert.True(t, caps.Assign)
}

func TestCanTransitionRequesterCancelOwnPending(t *testing.T) {
	org := uuid.New()
	a := orgActor(models.RoleRequester, org)
	req := testRequest(org, a.UserID, "pending")

	assert.NoError(t, CanTransition(a, req, lifecycle.StatusCancelled))
	assert.Error(t, CanTransition(a, req, lifecycle.StatusApproved))
}

func TestCanTransitionCrossTenantReadsAsNotFound(t *testing.T) {
	a := orgActor(models.RoleRequester, uuid.New())
	req := testRequest(uuid.New(), uuid.New(), "pending")

	err := CanTransition(a, req, lifecycle.StatusCancelled)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err), "cross-tenant must not leak existence")
}

func TestCanAssign(t *testing.T) {
	org := uuid.New()
	admin := orgActor(models.RoleAdmin, org)
	req := testRequest(org, uuid.New(), "pending")

	worker := &models.User{ID: uuid.New(), Role: models.RoleMaintenance, OrganizationID: &org}
	assert.NoError(t, CanAssign(admin, req, worker))

	requester := &models.User{ID: uuid.New(), Role: models.RoleRequester, OrganizationID: &org}
	err := CanAssign(admin, req, requester)
	require.Error(t, err)
	assert.True(t, apperr.IsPolicy(err))

	otherOrg := uuid.New()
	outsider := &models.User{ID: uuid.New(), Role: models.RoleMaintenance, OrganizationID: &otherOrg}
	err = CanAssign(admin, req, outsider)
	require.Error(t, err)
	assert.True(t, apperr.IsPolicy(err))
}

func TestCanAssignRequesterForbidden(t *testing.T) {
	org := uuid.New()
	a := orgActor(models.RoleRequester, org)
	req := testRequest(org, a.UserID, "pending")
	worker := &models.User{ID: uuid.New(), Role: models.RoleMaintenance, OrganizationID: &org}

	err := CanAssign(a, req, worker)
	require.Error(t, err)
	assert.True(t, apperr.IsPolicy(err))
}
