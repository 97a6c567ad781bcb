package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/helios-energy/helios-admin/internal/shared"
)

const refreshKeyPrefix = "refresh:"

// TokenManager issues HS256 access tokens and Redis backed refresh tokens.
type TokenManager struct {
	client     *redis.Client
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		client:     client,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue creates a new access/refresh pair for the given user.
func (tm *TokenManager) Issue(ctx context.Context, userID int64) (TokenPair, error) {
	expiresAt := time.Now().Add(tm.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	access, err := token.SignedString(tm.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: sign access token: %w", err)
	}

	refresh := uuid.NewString()
	if err := tm.client.Set(ctx, refreshKeyPrefix+refresh, userID, tm.refreshTTL).Err(); err != nil {
		return TokenPair{}, fmt.Errorf("auth: store refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// ParseAccess validates an access token and returns the user ID it carries.
func (tm *TokenManager) ParseAccess(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, shared.ErrTokenExpired
		}
		return 0, shared.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, shared.ErrInvalidCredentials
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, shared.ErrInvalidCredentials
	}
	return userID, nil
}

// Rotate consumes a refresh token and issues a fresh pair. The old token is
// deleted before the new pair is created so it cannot be replayed.
func (tm *TokenManager) Rotate(ctx context.Context, refresh string) (TokenPair, error) {
	key := refreshKeyPrefix + refresh
	raw, err := tm.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return TokenPair{}, shared.ErrTokenExpired
		}
		return TokenPair{}, fmt.Errorf("auth: load refresh token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return TokenPair{}, shared.ErrTokenExpired
	}
	if err := tm.client.Del(ctx, key).Err(); err != nil {
		return TokenPair{}, fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	return tm.Issue(ctx, userID)
}

// Revoke deletes a refresh token. Missing tokens are not an error.
func (tm *TokenManager) Revoke(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}
	if err := tm.client.Del(ctx, refreshKeyPrefix+refresh).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
