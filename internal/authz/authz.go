// Package authz holds the role and group scoped access rules. Every
// function here is pure: decisions depend only on the role and group
// attributes of the acting and target users, which callers must load
// fresh from the store (tokens carry no role claim).
package authz

import "github.com/iliyamo/user-account-service/internal/model"

// GroupScope describes which groups a listing may cover. All takes
// precedence over Groups; an empty scope with All false means the
// caller may not list anyone.
type GroupScope struct {
	All    bool
	Groups []string
}

// CanView reports whether actor may read target's record. Admins see
// everyone; moderators see users within their own group. Self-view is
// handled by the separate "me" path and intentionally not granted here.
func CanView(actor, target model.User) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleModerator:
		return actor.Group == target.Group
	}
	return false
}

// ListScope returns the group scope actor may list and whether listing
// is allowed at all. Plain users are denied outright rather than given
// an empty result set; the distinction matters for client behavior.
func ListScope(actor model.User) (GroupScope, bool) {
	switch actor.Role {
	case model.RoleAdmin:
		return GroupScope{All: true}, true
	case model.RoleModerator:
		return GroupScope{Groups: []string{actor.Group}}, true
	}
	return GroupScope{}, false
}

// CanEditOther reports whether actor may mutate a record that is not
// their own. Only admins may; moderators get read access within their
// group but no edit rights over others.
func CanEditOther(actor, target model.User) bool {
	return actor.Role == model.RoleAdmin
}
