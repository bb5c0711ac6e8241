package auth

import (
	"github.com/primetrade/taskapi/internal/models"
)

// Decision is the outcome of an access-control check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool { return d == Allow }

// The functions below are pure: they operate on an already-verified
// identity and already-fetched resource state, and every role/ownership
// combination maps to a defined outcome.

// CanMutateTask permits admins, and owners acting on their own task.
func CanMutateTask(identity *models.Claims, task *models.Task) Decision {
	if identity.Role == models.RoleAdmin {
		return Allow
	}
	if identity.UserID == task.UserID {
		return Allow
	}
	return Deny
}

// CanReadTask follows the same rule as mutation: task reads are scoped
// to the owner. The admin list-all view bypasses per-task checks via
// CanAdministrate instead.
func CanReadTask(identity *models.Claims, task *models.Task) Decision {
	return CanMutateTask(identity, task)
}

// CanDeleteUser permits admins only, and never against their own
// account, so an admin cannot lock the system out of administration.
func CanDeleteUser(identity *models.Claims, targetID int64) Decision {
	if identity.Role != models.RoleAdmin {
		return Deny
	}
	if identity.UserID == targetID {
		return Deny
	}
	return Allow
}

// CanAdministrate permits identities holding the admin role.
func CanAdministrate(identity *models.Claims) Decision {
	if identity.Role == models.RoleAdmin {
		return Allow
	}
	return Deny
}
