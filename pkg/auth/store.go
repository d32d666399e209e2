package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"admind/pkg/pagination"
	"admind/pkg/rbac"
)

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = errors.New("user not found")

// ErrCredentialsTaken is returned when an insert or update trips the unique
// constraints on email or username. The pre-checks are not transactional, so
// a concurrent writer can still reach the constraint.
var ErrCredentialsTaken = errors.New("email or username already exists")

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Store handles user persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new user store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a user. Username and email must already be normalized;
// the caller is responsible for the uniqueness pre-check (check-then-create
// is not transactional, a documented race).
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	var roleID interface{}
	if user.Role != nil {
		roleID = user.Role.ID
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, full_name, username, email, password_hash, role_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`, user.ID, user.FullName, user.Username, user.Email, user.PasswordHash, roleID).Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrCredentialsTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user with role and permission set populated. Called on
// every authenticated request, so permission revocation takes effect on the
// next request.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	// The id column is uuid-typed; a malformed id cannot match anything and
	// would otherwise fail the bind server-side.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT u.id, u.full_name, u.username, u.email, u.password_hash, u.created_at,
		       r.id, r.name
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	if err := s.loadPermissions(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user by normalized email
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT u.id, u.full_name, u.username, u.email, u.password_hash, u.created_at,
		       r.id, r.name
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1
	`, email))
}

// GetByUsername retrieves a user by normalized username
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT u.id, u.full_name, u.username, u.email, u.password_hash, u.created_at,
		       r.id, r.name
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.username = $1
	`, username))
}

// EmailTaken reports whether a normalized email belongs to a user other than
// excludeID (pass "" when creating). The id column is uuid-typed, so the
// exclusion compares as text and an empty excludeID skips it entirely rather
// than binding "" to a uuid parameter.
func (s *Store) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE email = $1 AND ($2 = '' OR id::text <> $2)
	`, email, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// UsernameTaken reports whether a normalized username belongs to a user other
// than excludeID
func (s *Store) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = $1 AND ($2 = '' OR id::text <> $2)
	`, username, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// UpdateUser persists identity fields and role assignment
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	var roleID interface{}
	if user.Role != nil {
		roleID = user.Role.ID
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET full_name = $1, username = $2, email = $3, role_id = $4
		WHERE id = $5
	`, user.FullName, user.Username, user.Email, roleID, user.ID)
	if isUniqueViolation(err) {
		return ErrCredentialsTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces a user's credential hash
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1 WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user by ID
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM users WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Paginate returns one window of users, optionally filtered by a
// case-insensitive substring match on username or email. The filter runs in
// SQL against the whole collection, so meta.total reflects the filtered count.
func (s *Store) Paginate(ctx context.Context, page int, search string) (pagination.Page[User], error) {
	like := "%" + search + "%"

	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username ILIKE $1 OR email ILIKE $1
	`, like).Scan(&total)
	if err != nil {
		return pagination.Page[User]{}, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.full_name, u.username, u.email, u.created_at, r.id, r.name
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.username ILIKE $1 OR u.email ILIKE $1
		ORDER BY u.created_at, u.id
		LIMIT $2 OFFSET $3
	`, like, pagination.DefaultPageSize, pagination.Offset(page, pagination.DefaultPageSize))
	if err != nil {
		return pagination.Page[User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var (
			user     User
			roleID   sql.NullInt64
			roleName sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.FullName, &user.Username, &user.Email,
			&user.CreatedAt, &roleID, &roleName); err != nil {
			return pagination.Page[User]{}, err
		}
		if roleID.Valid {
			user.Role = &rbac.Role{ID: roleID.Int64, Name: roleName.String}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[User]{}, err
	}

	return pagination.New(users, total, page, pagination.DefaultPageSize), nil
}

// scanUser scans one user row with optional role columns
func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var (
		user     User
		roleID   sql.NullInt64
		roleName sql.NullString
	)
	err := row.Scan(&user.ID, &user.FullName, &user.Username, &user.Email,
		&user.PasswordHash, &user.CreatedAt, &roleID, &roleName)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if roleID.Valid {
		user.Role = &rbac.Role{ID: roleID.Int64, Name: roleName.String}
	}
	return &user, nil
}

// loadPermissions populates the permission set of the user's role
func (s *Store) loadPermissions(ctx context.Context, user *User) error {
	if user.Role == nil {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.id
	`, user.Role.ID)
	if err != nil {
		return fmt.Errorf("failed to load permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]rbac.Permission, 0)
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return err
		}
		permissions = append(permissions, p)
	}
	user.Role.Permissions = permissions
	return rows.Err()
}
