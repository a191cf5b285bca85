package broadcast

import "github.com/akm-xdd/Trackly-core/internal/domain"

// deliveryTable is the base role × scope grant. Ownership widens it: for
// non-public scopes the subject's owner and assignee always receive the
// event, whatever their role. Anything absent from the table fails closed.
var deliveryTable = map[domain.Role]map[domain.EventScope]bool{
	domain.RoleAdmin: {
		domain.ScopePublic:         true,
		domain.ScopeRoleRestricted: true,
		domain.ScopeOwnerOnly:      true,
	},
	domain.RoleMaintainer: {
		domain.ScopePublic:         true,
		domain.ScopeRoleRestricted: true,
		domain.ScopeOwnerOnly:      false,
	},
	domain.RoleReporter: {
		domain.ScopePublic:         true,
		domain.ScopeRoleRestricted: false,
		domain.ScopeOwnerOnly:      false,
	},
}

// CanDeliver decides whether a subscriber with the given identity may see the
// event. Pure and total: same inputs always yield the same answer, unknown
// roles and scopes suppress.
func CanDeliver(event domain.Event, identity domain.Identity) bool {
	grants, ok := deliveryTable[identity.Role]
	if !ok {
		return false
	}

	allowed, ok := grants[event.Scope]
	if !ok {
		return false
	}
	if allowed {
		return true
	}

	// Ownership grant for restricted scopes: reporters follow their own
	// issues, assignees follow work handed to them.
	if identity.UserID == event.OwnerID {
		return true
	}
	if event.AssigneeID != nil && identity.UserID == *event.AssigneeID {
		return true
	}
	return false
}
