package console

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helios-energy/helios-admin/internal/shared"
)

func authenticatedSession(t *testing.T, principal *shared.Principal) *Session {
	t.Helper()
	store := NewMemoryStore()
	seedStore(t, store, principal)
	session := NewSession(store, nil, slog.Default())
	session.Init()
	require.Equal(t, StateAuthenticated, session.State())
	return session
}

func TestCheckPermissionIntersection(t *testing.T) {
	principal := testPrincipal() // holds users.read, roles.read
	gate := NewGate(authenticatedSession(t, principal))

	// one overlapping permission is enough
	status := gate.Check(context.Background(), Requirement{
		Permissions: []string{shared.PermUsersRead, shared.PermUsersUpdate},
	})
	require.Equal(t, StatusGranted, status)

	// no overlap at all
	status = gate.Check(context.Background(), Requirement{
		Permissions: []string{shared.PermFinancialRead},
	})
	require.Equal(t, StatusDenied, status)
}

func TestCheckWithoutSessionIsUnauthenticated(t *testing.T) {
	store := NewMemoryStore()
	session := NewSession(store, nil, slog.Default())
	gate := NewGate(session)

	status := gate.Check(context.Background(), Requirement{
		Permissions: []string{shared.PermUsersRead},
	})
	require.Equal(t, StatusUnauthenticated, status)
	require.NotEqual(t, StatusGranted, status)
}

func TestEvaluateNilPrincipalNeverGrants(t *testing.T) {
	require.Equal(t, StatusUnauthenticated, Evaluate(nil, Requirement{}))
	require.Equal(t, StatusUnauthenticated, Evaluate(nil, Requirement{
		Permissions: []string{shared.PermUsersRead},
	}))
}

func TestCheckEmptyRequirementNeedsOnlyAuthentication(t *testing.T) {
	gate := NewGate(authenticatedSession(t, testPrincipal()))
	require.Equal(t, StatusGranted, gate.Check(context.Background(), Requirement{}))
}

func TestCheckRoleRequirementMatchesSlugOrName(t *testing.T) {
	gate := NewGate(authenticatedSession(t, testPrincipal()))

	require.Equal(t, StatusGranted, gate.Check(context.Background(), Requirement{
		Roles: []string{"admin"},
	}))
	require.Equal(t, StatusGranted, gate.Check(context.Background(), Requirement{
		Roles: []string{"administrator"}, // matches the display name, case-insensitive
	}))
	require.Equal(t, StatusDenied, gate.Check(context.Background(), Requirement{
		Roles: []string{"technician"},
	}))
}

func TestCheckRefreshesMissingPrincipal(t *testing.T) {
	// token present but no cached principal: the gate must fetch before
	// deciding.
	store := NewMemoryStore()
	require.NoError(t, store.Set(StorageKeyToken, "stored-token"))
	raw, err := json.Marshal(testPrincipal())
	require.NoError(t, err)
	require.NoError(t, store.Set(StorageKeyUser, string(raw)))

	session := NewSession(store, func(ctx context.Context) (*shared.Principal, error) {
		return testPrincipal(), nil
	}, slog.Default())
	session.Init()
	session.mu.Lock()
	session.principal = nil
	session.mu.Unlock()

	gate := NewGate(session)
	status := gate.Check(context.Background(), Requirement{
		Permissions: []string{shared.PermUsersRead},
	})
	require.Equal(t, StatusGranted, status)
	require.NotNil(t, session.Principal())
}

func TestCheckFailsClosedOnRefreshError(t *testing.T) {
	store := NewMemoryStore()
	seedStore(t, store, testPrincipal())

	session := NewSession(store, func(ctx context.Context) (*shared.Principal, error) {
		return nil, errors.New("identity service unavailable")
	}, slog.Default())
	session.Init()
	session.mu.Lock()
	session.principal = nil
	session.mu.Unlock()

	gate := NewGate(session)
	status := gate.Check(context.Background(), Requirement{})
	require.Equal(t, StatusDenied, status)
}

func TestPeekReportsCheckingWhileLoading(t *testing.T) {
	session := NewSession(NewMemoryStore(), nil, slog.Default())
	gate := NewGate(session)

	require.Equal(t, StatusChecking, gate.Peek(Requirement{}))

	session.Init()
	require.Equal(t, StatusUnauthenticated, gate.Peek(Requirement{}))
}

func TestCheckPageUsesPermissionTable(t *testing.T) {
	gate := NewGate(authenticatedSession(t, testPrincipal()))

	require.Equal(t, StatusGranted, gate.CheckPage(context.Background(), "/users"))
	require.Equal(t, StatusDenied, gate.CheckPage(context.Background(), "/quotations"))
	// unregistered routes only need an authenticated session
	require.Equal(t, StatusGranted, gate.CheckPage(context.Background(), "/profile"))
}
