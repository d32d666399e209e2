package rbac

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func perms(names ...string) []Permission {
	out := make([]Permission, len(names))
	for i, n := range names {
		out[i] = Permission{ID: int64(i + 1), Name: n}
	}
	return out
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		resource    string
		permissions []Permission
		want        bool
	}{
		{
			name:        "view permission allows GET",
			method:      http.MethodGet,
			resource:    ResourceOrders,
			permissions: perms("view_orders"),
			want:        true,
		},
		{
			name:        "view permission rejects POST",
			method:      http.MethodPost,
			resource:    ResourceOrders,
			permissions: perms("view_orders"),
			want:        false,
		},
		{
			name:        "edit permission allows GET",
			method:      http.MethodGet,
			resource:    ResourceProducts,
			permissions: perms("edit_products"),
			want:        true,
		},
		{
			name:        "edit permission allows DELETE",
			method:      http.MethodDelete,
			resource:    ResourceProducts,
			permissions: perms("edit_products"),
			want:        true,
		},
		{
			name:        "empty permission set fails closed on GET",
			method:      http.MethodGet,
			resource:    ResourceUsers,
			permissions: nil,
			want:        false,
		},
		{
			name:        "permissions for another resource do not leak",
			method:      http.MethodGet,
			resource:    ResourceRoles,
			permissions: perms("view_users", "edit_users", "view_products"),
			want:        false,
		},
		{
			name:        "membership is order independent",
			method:      http.MethodPut,
			resource:    ResourceUsers,
			permissions: perms("view_orders", "edit_users", "view_users"),
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.method, tt.resource, tt.permissions))
		})
	}
}

func TestTags(t *testing.T) {
	assert.Equal(t, "view_orders", ViewTag(ResourceOrders))
	assert.Equal(t, "edit_roles", EditTag(ResourceRoles))
}
