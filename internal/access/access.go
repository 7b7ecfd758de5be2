// Package access centralizes role-based visibility and capability resolution.
// Every query path and mutation consults this package instead of re-deriving
// role booleans; the tenant-isolation predicate lives in exactly one place.
package access

import (
	"github.com/google/uuid"

	"github.com/facilitydesk/backend/internal/lifecycle"
	"github.com/facilitydesk/backend/internal/models"
	"github.com/facilitydesk/backend/pkg/apperr"
)

// Actor is the resolved identity of the caller: who they are, what they may
// do, and which tenant they belong to. OrganizationID is nil only for
// super_admin.
type Actor struct {
	UserID         uuid.UUID
	Role           models.Role
	OrganizationID *uuid.UUID
}

// Capability is the permission set an actor holds on a single request.
type Capability struct {
	View       bool
	Transition bool
	Cancel     bool
	Assign     bool
	Message    bool
	Upload     bool
}

// Scope carries the predicate inputs for a request listing query.
// OrganizationID nil with Empty false never occurs for non-super_admin roles.
type Scope struct {
	OrganizationID *uuid.UUID
	RequestorID    *uuid.UUID
	// Empty means the result set is empty by policy (super_admin without a
	// selected tenant) and no query should run at all.
	Empty bool
}

// StaffRole reports whether the role may triage requests (transition, assign).
func StaffRole(r models.Role) bool {
	return r == models.RoleAdmin || r == models.RoleMaintenance || r == models.RoleSuperAdmin
}

// sameTenant reports whether the actor belongs to the request's organization.
// super_admin belongs everywhere.
func sameTenant(a Actor, orgID uuid.UUID) bool {
	if a.Role == models.RoleSuperAdmin {
		return true
	}
	return a.OrganizationID != nil && *a.OrganizationID == orgID
}

// Capabilities resolves the actor's permission set on the given request.
// Out-of-tenant actors get the zero set, indistinguishable from the request
// not existing.
func Capabilities(a Actor, req *models.Request) Capability {
	if !sameTenant(a, req.OrganizationID) {
		return Capability{}
	}
	if StaffRole(a.Role) {
		return Capability{View: true, Transition: true, Cancel: true, Assign: true, Message: true, Upload: true}
	}
	if req.RequestorID != a.UserID {
		return Capability{}
	}
	// Requesters see their own requests and may cancel while still pending.
	return Capability{
		View:    true,
		Cancel:  lifecycle.Status(req.Status) == lifecycle.StatusPending,
		Message: true,
		Upload:  true,
	}
}

// ListScope produces the filter for a request listing per the actor's role.
// selectedOrg is only honored for super_admin; without it their scope is
// empty, never all tenants.
func ListScope(a Actor, selectedOrg *uuid.UUID) (Scope, error) {
	switch a.Role {
	case models.RoleSuperAdmin:
		if selectedOrg == nil {
			return Scope{Empty: true}, nil
		}
		return Scope{OrganizationID: selectedOrg}, nil
	case models.RoleAdmin, models.RoleMaintenance:
		if a.OrganizationID == nil {
			return Scope{}, apperr.Policyf("role %s requires an organization", a.Role)
		}
		return Scope{OrganizationID: a.OrganizationID}, nil
	case models.RoleRequester:
		if a.OrganizationID == nil {
			return Scope{}, apperr.Policyf("role %s requires an organization", a.Role)
		}
		uid := a.UserID
		return Scope{OrganizationID: a.OrganizationID, RequestorID: &uid}, nil
	default:
		return Scope{}, apperr.Policyf("unknown role %q", a.Role)
	}
}

// CanTransition checks whether the actor may submit a status transition on
// the request. Staff may perform any legal transition; the original requester
// may only cancel their own pending request.
func CanTransition(a Actor, req *models.Request, target lifecycle.Status) error {
	caps := Capabilities(a, req)
	if caps.Transition {
		return nil
	}
	if target == lifecycle.StatusCancelled && caps.Cancel {
		return nil
	}
	if !caps.View {
		return apperr.NotFound("request")
	}
	return apperr.Policyf("role %s may not set status %q", a.Role, target)
}

// CanAssign checks whether the actor may assign the request to assignee.
// The assignee must be maintenance-capable and belong to the request's
// organization.
func CanAssign(a Actor, req *models.Request, assignee *models.User) error {
	caps := Capabilities(a, req)
	if !caps.View {
		return apperr.NotFound("request")
	}
	if !caps.Assign {
		return apperr.Policyf("role %s may not assign requests", a.Role)
	}
	if !assignee.Role.MaintenanceCapable() {
		return apperr.Policyf("assignee role %s is not maintenance-capable", assignee.Role)
	}
	if assignee.OrganizationID == nil || *assignee.OrganizationID != req.OrganizationID {
		return apperr.Policyf("assignee does not belong to the request's organization")
	}
	return nil
}
