package shared

import "strings"

// PrincipalRole describes the role attached to an authenticated user,
// including its granted permission strings.
type PrincipalRole struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Principal is the authenticated actor resolved from a bearer token.
type Principal struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Role  PrincipalRole `json:"role"`
}

// HasAnyPermission reports whether the principal holds at least one of the
// given permissions. Comparison is case-insensitive.
func (p *Principal) HasAnyPermission(perms ...string) bool {
	if p == nil {
		return false
	}
	if len(perms) == 0 {
		return true
	}
	granted := make(map[string]struct{}, len(p.Role.Permissions))
	for _, g := range p.Role.Permissions {
		granted[strings.ToLower(g)] = struct{}{}
	}
	for _, want := range perms {
		if _, ok := granted[strings.ToLower(strings.TrimSpace(want))]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the principal holds every given permission.
func (p *Principal) HasAllPermissions(perms ...string) bool {
	if p == nil {
		return false
	}
	granted := make(map[string]struct{}, len(p.Role.Permissions))
	for _, g := range p.Role.Permissions {
		granted[strings.ToLower(g)] = struct{}{}
	}
	for _, want := range perms {
		if _, ok := granted[strings.ToLower(strings.TrimSpace(want))]; !ok {
			return false
		}
	}
	return true
}
