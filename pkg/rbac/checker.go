package rbac

import "net/http"

// Allowed reports whether a permission set authorizes an HTTP method on a
// resource. GET is satisfied by either the view or edit tag; every other
// method requires the edit tag. An empty permission set fails closed.
//
// The check is a pure set-membership predicate: deterministic and
// independent of permission order.
func Allowed(method, resource string, permissions []Permission) bool {
	if len(permissions) == 0 {
		return false
	}

	if method == http.MethodGet {
		return hasAny(permissions, ViewTag(resource), EditTag(resource))
	}
	return hasAny(permissions, EditTag(resource))
}

func hasAny(permissions []Permission, names ...string) bool {
	for _, p := range permissions {
		for _, name := range names {
			if p.Name == name {
				return true
			}
		}
	}
	return false
}
