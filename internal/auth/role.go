package auth

import "gamehub/internal/model"

// RolePolicy lists the roles allowed through a route group.
type RolePolicy struct {
	Allowed []model.Role
}

// AdminOnly permits administrators only.
var AdminOnly = RolePolicy{Allowed: []model.Role{model.RoleAdmin}}

// Permits reports whether the user's role is in the allowed set.
func (p RolePolicy) Permits(user *model.User) bool {
	if user == nil {
		return false
	}
	for _, r := range p.Allowed {
		if user.Role == r {
			return true
		}
	}
	return false
}
