package rbac

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helios-energy/helios-admin/internal/shared"
)

type memoryRepo struct {
	roles      map[int64]Role
	perms      map[int64]Permission
	rolePerms  map[int64]map[int64]struct{}
	userRoles  map[int64]int64
	nextRoleID int64
	nextPermID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		roles:     make(map[int64]Role),
		perms:     make(map[int64]Permission),
		rolePerms: make(map[int64]map[int64]struct{}),
		userRoles: make(map[int64]int64),
	}
}

func (r *memoryRepo) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRepo) GetRole(ctx context.Context, id int64) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (r *memoryRepo) CreateRole(ctx context.Context, role Role) (Role, error) {
	for _, existing := range r.roles {
		if existing.Slug == role.Slug {
			return Role{}, ErrRoleExists
		}
	}
	r.nextRoleID++
	role.ID = r.nextRoleID
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRepo) UpdateRole(ctx context.Context, role Role) (Role, error) {
	existing, ok := r.roles[role.ID]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	existing.Slug = role.Slug
	existing.Name = role.Name
	existing.Description = role.Description
	existing.UpdatedAt = time.Now()
	r.roles[role.ID] = existing
	return existing, nil
}

func (r *memoryRepo) DeleteRole(ctx context.Context, id int64) (int64, error) {
	role, ok := r.roles[id]
	if !ok || role.IsSystem {
		return 0, nil
	}
	delete(r.roles, id)
	delete(r.rolePerms, id)
	return 1, nil
}

func (r *memoryRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	var out []Permission
	for _, p := range r.perms {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	for _, p := range r.perms {
		if p.Name == name {
			p.Description = description
			r.perms[p.ID] = p
			return p, nil
		}
	}
	r.nextPermID++
	p := Permission{ID: r.nextPermID, Name: name, Description: description}
	r.perms[p.ID] = p
	return p, nil
}

func (r *memoryRepo) ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var out []Permission
	for id := range r.rolePerms[roleID] {
		out = append(out, r.perms[id])
	}
	return out, nil
}

func (r *memoryRepo) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	if r.rolePerms[roleID] == nil {
		r.rolePerms[roleID] = make(map[int64]struct{})
	}
	r.rolePerms[roleID][permissionID] = struct{}{}
	return nil
}

func (r *memoryRepo) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	delete(r.rolePerms[roleID], permissionID)
	return nil
}

func (r *memoryRepo) UserEffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	roleID, ok := r.userRoles[userID]
	if !ok {
		return nil, nil
	}
	var out []string
	for id := range r.rolePerms[roleID] {
		out = append(out, r.perms[id].Name)
	}
	return out, nil
}

func TestCreateRoleDerivesSlug(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "  Field Operations  ", "crew leads")
	require.NoError(t, err)
	require.Equal(t, "field-operations", role.Slug)
	require.Equal(t, "Field Operations", role.Name)

	_, err = svc.CreateRole(ctx, "Field Operations", "duplicate")
	require.ErrorIs(t, err, ErrRoleExists)

	_, err = svc.CreateRole(ctx, "   ", "")
	require.ErrorIs(t, err, ErrRoleRequired)
}

func TestSetRolePermissionsReplacesSet(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "Support", "")
	require.NoError(t, err)

	read, err := repo.EnsurePermission(ctx, shared.PermSupportRead, "")
	require.NoError(t, err)
	create, err := repo.EnsurePermission(ctx, shared.PermSupportCreate, "")
	require.NoError(t, err)
	update, err := repo.EnsurePermission(ctx, shared.PermSupportUpdate, "")
	require.NoError(t, err)

	require.NoError(t, svc.SetRolePermissions(ctx, role.ID, []int64{read.ID, create.ID}))
	got, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{shared.PermSupportRead, shared.PermSupportCreate}, got.Permissions)

	require.NoError(t, svc.SetRolePermissions(ctx, role.ID, []int64{read.ID, update.ID}))
	got, err = svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{shared.PermSupportRead, shared.PermSupportUpdate}, got.Permissions)
}

func TestDeleteSystemRoleRefused(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	repo.nextRoleID++
	repo.roles[repo.nextRoleID] = Role{ID: repo.nextRoleID, Slug: "administrator", Name: "Administrator", IsSystem: true}

	err := svc.DeleteRole(ctx, repo.nextRoleID)
	require.ErrorIs(t, err, ErrSystemRole)
}
