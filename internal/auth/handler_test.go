package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helios-energy/helios-admin/internal/auth"
	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
	_ "github.com/helios-energy/helios-admin/testing"
)

type stubRepo struct {
	user      *auth.User
	principal *shared.Principal
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) GetPrincipal(ctx context.Context, userID int64) (*shared.Principal, error) {
	if s.principal == nil || s.principal.ID != userID {
		return nil, shared.ErrNotFound
	}
	return s.principal, nil
}

func newTestHandler(t *testing.T) (*auth.Handler, *stubRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := auth.NewTokenManager(client, "testsecret", 15*time.Minute, time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubRepo{
		user: &auth.User{ID: 7, Email: "ops@helios.test", Name: "Ops", PasswordHash: string(hash), RoleID: 1, IsActive: true},
		principal: &shared.Principal{
			ID: 7, Name: "Ops", Email: "ops@helios.test",
			Role: shared.PrincipalRole{ID: 1, Slug: "operations", Name: "Operations", Permissions: []string{shared.PermClientsRead}},
		},
	}

	logger := slog.New(slog.NewTextHandler(testingWriter{t}, nil))
	service := auth.NewService(repo, tokens)
	mw := auth.Middleware{Service: service, Tokens: tokens, Logger: logger}
	return auth.NewHandler(logger, service, mw), repo
}

type testingWriter struct{ t *testing.T }

func (w testingWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func doJSON(t *testing.T, handler http.Handler, method, path, body, bearer string) (*httptest.ResponseRecorder, httpx.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	return res, env
}

func mountAuth(h *auth.Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	return r
}

func TestLoginSuccess(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountAuth(h)

	res, env := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ops@helios.test","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	tokens, ok := data["tokens"].(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, tokens["access_token"])
	require.NotEmpty(t, tokens["refresh_token"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountAuth(h)

	res, env := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ops@helios.test","password":"wrong-password"}`, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, env.Success)
	require.Equal(t, "invalid email or password", env.Message)
}

func TestLoginValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountAuth(h)

	res, env := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"not-an-email","password":"short"}`, "")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.False(t, env.Success)
	require.Contains(t, env.Errors, "email")
	require.Contains(t, env.Errors, "password")
}

func TestMeRequiresToken(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountAuth(h)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountAuth(h)

	_, env := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ops@helios.test","password":"correct-horse"}`, "")
	data := env.Data.(map[string]any)
	tokens := data["tokens"].(map[string]any)
	refresh := tokens["refresh_token"].(string)

	res, env := doJSON(t, router, http.MethodPost, "/auth/refresh",
		`{"refresh_token":"`+refresh+`"}`, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, env.Success)

	// The consumed token must not be replayable.
	res, env = doJSON(t, router, http.MethodPost, "/auth/refresh",
		`{"refresh_token":"`+refresh+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, env.Success)
}

func TestMeReturnsPrincipal(t *testing.T) {
	h, _ := newTestHandler(t)
	router := mountAuth(h)

	_, env := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"email":"ops@helios.test","password":"correct-horse"}`, "")
	data := env.Data.(map[string]any)
	tokens := data["tokens"].(map[string]any)
	access := tokens["access_token"].(string)

	res, env := doJSON(t, router, http.MethodGet, "/auth/me", "", access)
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, env.Success)
	me := env.Data.(map[string]any)
	require.EqualValues(t, 7, me["id"])
}
