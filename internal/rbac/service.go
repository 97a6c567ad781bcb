package rbac

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrRoleExists indicates a role slug or name collision.
	ErrRoleExists = errors.New("rbac: role already exists")
	// ErrRoleRequired indicates a missing role name.
	ErrRoleRequired = errors.New("rbac: role name required")
	// ErrSystemRole indicates an attempt to delete a system role.
	ErrSystemRole = errors.New("rbac: system role cannot be removed")
)

// Service orchestrates RBAC operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles with their permission names.
func (s *Service) ListRoles(ctx context.Context) ([]RoleWithPermissions, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleWithPermissions, 0, len(roles))
	for _, role := range roles {
		perms, err := s.repo.ListRolePermissions(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			names = append(names, p.Name)
		}
		out = append(out, RoleWithPermissions{Role: role, Permissions: names})
	}
	return out, nil
}

// GetRole fetches a role by ID with its permissions.
func (s *Service) GetRole(ctx context.Context, id int64) (RoleWithPermissions, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	perms, err := s.repo.ListRolePermissions(ctx, role.ID)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return RoleWithPermissions{Role: role, Permissions: names}, nil
}

// CreateRole inserts a new role. The slug is derived from the name when
// not provided.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, ErrRoleRequired
	}
	return s.repo.CreateRole(ctx, Role{
		Slug:        Slugify(name),
		Name:        name,
		Description: strings.TrimSpace(description),
	})
}

// UpdateRole updates an existing role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, ErrRoleRequired
	}
	return s.repo.UpdateRole(ctx, Role{
		ID:          id,
		Slug:        Slugify(name),
		Name:        name,
		Description: strings.TrimSpace(description),
	})
}

// DeleteRole removes a role by ID.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	rows, err := s.repo.DeleteRole(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSystemRole
	}
	return nil
}

// ListPermissions returns the permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// SetRolePermissions replaces the permission set of a role with the given
// permission IDs.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	existingPerms, err := s.repo.ListRolePermissions(ctx, roleID)
	if err != nil {
		return err
	}
	existing := make(map[int64]struct{}, len(existingPerms))
	for _, p := range existingPerms {
		existing[p.ID] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			if err := s.repo.AttachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range existing {
		if _, ok := keep[id]; !ok {
			if err := s.repo.DetachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// EffectivePermissions returns deduplicated permission names for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.UserEffectivePermissions(ctx, userID)
}

// Slugify converts a role name into its slug form.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
