package rbac

// Resource names used in permission tags
const (
	ResourceUsers    = "users"
	ResourceRoles    = "roles"
	ResourceProducts = "products"
	ResourceOrders   = "orders"
)

// Permission is a single grant, named `<action>_<resource>`
type Permission struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Role owns a set of permissions; users reference exactly one role
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// ViewTag returns the read permission tag for a resource
func ViewTag(resource string) string {
	return "view_" + resource
}

// EditTag returns the mutation permission tag for a resource
func EditTag(resource string) string {
	return "edit_" + resource
}
