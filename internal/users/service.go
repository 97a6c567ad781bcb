package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken indicates an email collision.
	ErrEmailTaken = errors.New("users: email already in use")
	// ErrWeakPassword indicates the password fails minimum requirements.
	ErrWeakPassword = errors.New("users: password too short")
)

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser creates an account with a bcrypt hashed password.
func (s *Service) CreateUser(ctx context.Context, email, name, password string, roleID int64) (User, error) {
	if len(password) < 8 {
		return User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, User{
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Name:   strings.TrimSpace(name),
		RoleID: roleID,
	}, string(hash))
}

// UpdateUser modifies account attributes and role assignment.
func (s *Service) UpdateUser(ctx context.Context, id int64, email, name string, roleID int64) (User, error) {
	return s.repo.UpdateUser(ctx, User{
		ID:     id,
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Name:   strings.TrimSpace(name),
		RoleID: roleID,
	})
}

// ToggleActive flips the account's active flag.
func (s *Service) ToggleActive(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return s.repo.SetActive(ctx, id, !user.IsActive)
}
