// Package rbac implements the flat role-based access control model: a Role
// owns a set of Permissions, and a permission tag of the form
// `<action>_<resource>` gates one verb-class on one resource.
//
// The model is deliberately flat. There is no role hierarchy and no
// attribute-based evaluation; authorization is a set-membership check over
// the authenticated user's permission tags.
package rbac
