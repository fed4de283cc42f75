// Package access decides which role-scoped view tree a session may reach.
package access

import (
	"strings"

	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/session"
)

// View is a role-scoped view tree
type View string

const (
	ViewPublic       View = "public"
	ViewUser         View = "user"
	ViewPhotographer View = "photographer"
	ViewAdmin        View = "admin"
)

// PublicRoutes are reachable without authentication
var PublicRoutes = []string{
	"/",
	"/user/login",
	"/user/register",
	"/photographer/login",
	"/photographer/register",
	"/admin/login",
}

var treeRoots = map[View]string{
	ViewUser:         "/dashboard",
	ViewPhotographer: "/photographer-dashboard",
	ViewAdmin:        "/admin-dashboard",
}

var loginPaths = map[models.Role]string{
	models.RoleUser:         "/user/login",
	models.RolePhotographer: "/photographer/login",
	models.RoleAdmin:        "/admin/login",
}

// Resolve returns the active view tree for s
func Resolve(s session.Session) View {
	switch s.Role() {
	case models.RoleUser:
		return ViewUser
	case models.RolePhotographer:
		return ViewPhotographer
	case models.RoleAdmin:
		return ViewAdmin
	default:
		return ViewPublic
	}
}

// Home returns the landing path of the session's view tree
func Home(s session.Session) string {
	if root, ok := treeRoots[Resolve(s)]; ok {
		return root
	}
	return "/"
}

// LoginPath returns where an unauthenticated caller of role is sent
func LoginPath(role models.Role) string {
	if p, ok := loginPaths[role]; ok {
		return p
	}
	return "/"
}

// Reachable reports whether s may navigate to path. Public routes are
// always reachable; a dashboard tree only by its own role; anything else
// is unknown and unreachable.
func Reachable(s session.Session, path string) bool {
	path = normalize(path)
	for _, p := range PublicRoutes {
		if path == p {
			return true
		}
	}

	for view, root := range treeRoots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return Resolve(s) == view
		}
	}
	return false
}

// RequiredRole returns the role owning path's view tree, or RoleNone for
// public or unknown paths.
func RequiredRole(path string) models.Role {
	path = normalize(path)
	for view, root := range treeRoots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return models.Role(view)
		}
	}
	return models.RoleNone
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
