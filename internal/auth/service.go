package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/helios-energy/helios-admin/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates email/password credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*shared.Principal, TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}

	principal, err := s.repo.GetPrincipal(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return principal, pair, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

// Logout revokes the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

// Principal resolves the principal for a validated access token subject.
func (s *Service) Principal(ctx context.Context, userID int64) (*shared.Principal, error) {
	return s.repo.GetPrincipal(ctx, userID)
}
