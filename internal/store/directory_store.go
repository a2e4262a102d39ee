package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/kitchen-roster/internal/model"
)

// CreateUser inserts a staff member. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateUser(ctx context.Context, user model.User) error {
	if strings.TrimSpace(user.Name) == "" && strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("user needs a name or an email")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email) VALUES (?, ?, ?)",
		user.ID, user.Name, user.Email,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUsers returns all staff members ordered by name.
func (s *SQLiteStore) GetUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users,
		"SELECT id, name, email FROM users ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("getting users: %w", err)
	}
	return users, nil
}

// CreateRole inserts a role. The ID is caller supplied since roles are
// referenced by stable slugs such as "general_manager".
func (s *SQLiteStore) CreateRole(ctx context.Context, role model.Role) error {
	if strings.TrimSpace(role.ID) == "" {
		return fmt.Errorf("role id must not be empty")
	}
	if role.Name == "" {
		role.Name = role.ID
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO roles (id, name) VALUES (?, ?)", role.ID, role.Name)
	if err != nil {
		return fmt.Errorf("creating role %s: %w", role.ID, err)
	}
	return nil
}

// GetRoles returns all roles ordered by name.
func (s *SQLiteStore) GetRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := s.db.SelectContext(ctx, &roles,
		"SELECT id, name FROM roles ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("getting roles: %w", err)
	}
	return roles, nil
}

// AssignRole grants roleID to userID. Granting a held role is a no-op.
func (s *SQLiteStore) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)",
		userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("assigning role %s to user %s: %w", roleID, userID, err)
	}
	return nil
}

// RevokeRole removes roleID from userID.
func (s *SQLiteStore) RevokeRole(ctx context.Context, userID, roleID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id = ? AND role_id = ?",
		userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("revoking role %s from user %s: %w", roleID, userID, err)
	}
	return nil
}

// GetRoleIDsForUser returns the role ids held by userID.
func (s *SQLiteStore) GetRoleIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT role_id FROM user_roles WHERE user_id = ? ORDER BY role_id", userID)
	if err != nil {
		return nil, fmt.Errorf("getting roles for user %s: %w", userID, err)
	}
	return ids, nil
}
