package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store errors surfaced to the request boundary
var (
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleInUse is returned when deleting a role that users still
	// reference (restrict-if-referenced policy).
	ErrRoleInUse = errors.New("role is still assigned to users")
)

// Store handles role and permission persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new RBAC store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListPermissions returns every permission tag known to the system
func (s *Store) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM permissions ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]Permission, 0)
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

// ListRoles returns all roles without their permission sets
func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM roles ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]Role, 0)
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// GetRole retrieves a role by ID with its permission set populated
func (s *Store) GetRole(ctx context.Context, roleID int64) (*Role, error) {
	var role Role
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM roles WHERE id = $1
	`, roleID).Scan(&role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	permissions, err := s.rolePermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions

	return &role, nil
}

// CreateRole creates a role and attaches the given permissions
func (s *Store) CreateRole(ctx context.Context, name string, permissionIDs []int64) (*Role, error) {
	var roleID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO roles (name) VALUES ($1) RETURNING id
	`, name).Scan(&roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	if err := s.replacePermissions(ctx, roleID, permissionIDs); err != nil {
		return nil, err
	}

	return s.GetRole(ctx, roleID)
}

// UpdateRole renames a role and replaces its permission set
func (s *Store) UpdateRole(ctx context.Context, roleID int64, name string, permissionIDs []int64) (*Role, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE roles SET name = $1 WHERE id = $2
	`, name, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrRoleNotFound
	}

	if err := s.replacePermissions(ctx, roleID, permissionIDs); err != nil {
		return nil, err
	}

	return s.GetRole(ctx, roleID)
}

// DeleteRole removes a role. Deletion is refused while any user still
// references the role.
func (s *Store) DeleteRole(ctx context.Context, roleID int64) error {
	var referencing int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE role_id = $1
	`, roleID).Scan(&referencing)
	if err != nil {
		return fmt.Errorf("failed to count role references: %w", err)
	}
	if referencing > 0 {
		return ErrRoleInUse
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM role_permissions WHERE role_id = $1
	`, roleID); err != nil {
		return fmt.Errorf("failed to detach permissions: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM roles WHERE id = $1
	`, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// rolePermissions loads the permission set attached to a role
func (s *Store) rolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.id
	`, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]Permission, 0)
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

// replacePermissions swaps a role's permission set for the given IDs.
// Not transactional; a concurrent update may interleave (documented race,
// same as every check-then-write in this service).
func (s *Store) replacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM role_permissions WHERE role_id = $1
	`, roleID); err != nil {
		return fmt.Errorf("failed to clear role permissions: %w", err)
	}

	for _, permissionID := range permissionIDs {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
		`, roleID, permissionID); err != nil {
			return fmt.Errorf("failed to attach permission %d: %w", permissionID, err)
		}
	}
	return nil
}
