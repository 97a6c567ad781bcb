package console

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helios-energy/helios-admin/internal/shared"
)

func testPrincipal() *shared.Principal {
	return &shared.Principal{
		ID:    1,
		Name:  "Dana Admin",
		Email: "dana@helios.test",
		Role: shared.PrincipalRole{
			ID:          1,
			Slug:        "admin",
			Name:        "Administrator",
			Permissions: []string{shared.PermUsersRead, shared.PermRolesRead},
		},
	}
}

func seedStore(t *testing.T, store CredentialStore, principal *shared.Principal) {
	t.Helper()
	raw, err := json.Marshal(principal)
	require.NoError(t, err)
	require.NoError(t, store.Set(StorageKeyToken, "stored-token"))
	require.NoError(t, store.Set(StorageKeyUser, string(raw)))
}

func TestInitRestoresPersistedSession(t *testing.T) {
	store := NewMemoryStore()
	seedStore(t, store, testPrincipal())

	session := NewSession(store, nil, slog.Default())
	session.Init()

	require.Equal(t, StateAuthenticated, session.State())
	require.Equal(t, "stored-token", session.Token())
	require.Equal(t, "Dana Admin", session.Principal().Name)
}

func TestInitWithoutCredentialsIsAnonymous(t *testing.T) {
	session := NewSession(NewMemoryStore(), nil, slog.Default())
	session.Init()

	require.Equal(t, StateAnonymous, session.State())
	require.Nil(t, session.Principal())
	require.Empty(t, session.Token())
}

func TestInitPurgesCorruptStoredUser(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(StorageKeyToken, "stored-token"))
	require.NoError(t, store.Set(StorageKeyUser, "{not json"))

	session := NewSession(store, nil, slog.Default())
	session.Init()

	require.Equal(t, StateAnonymous, session.State())
	_, hasToken := store.Get(StorageKeyToken)
	require.False(t, hasToken)
	_, hasUser := store.Get(StorageKeyUser)
	require.False(t, hasUser)
}

func TestLoginPersistsAndLogoutClears(t *testing.T) {
	store := NewMemoryStore()
	session := NewSession(store, nil, slog.Default())
	session.Init()

	require.NoError(t, session.Login("fresh-token", testPrincipal()))
	require.Equal(t, StateAuthenticated, session.State())
	token, ok := store.Get(StorageKeyToken)
	require.True(t, ok)
	require.Equal(t, "fresh-token", token)

	session.Logout()
	require.Equal(t, StateAnonymous, session.State())
	_, ok = store.Get(StorageKeyToken)
	require.False(t, ok)
	_, ok = store.Get(StorageKeyUser)
	require.False(t, ok)
}

func TestRefreshReplacesPrincipalWholesale(t *testing.T) {
	store := NewMemoryStore()
	seedStore(t, store, testPrincipal())

	updated := testPrincipal()
	updated.Role.Permissions = []string{shared.PermFinancialRead}
	session := NewSession(store, func(ctx context.Context) (*shared.Principal, error) {
		return updated, nil
	}, slog.Default())
	session.Init()
	before := session.Principal()

	got, err := session.Refresh(context.Background())
	require.NoError(t, err)
	require.Same(t, updated, got)
	require.NotSame(t, before, session.Principal())
	require.Equal(t, []string{shared.PermFinancialRead}, session.Principal().Role.Permissions)

	// the persisted copy is replaced too
	raw, ok := store.Get(StorageKeyUser)
	require.True(t, ok)
	var persisted shared.Principal
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Equal(t, []string{shared.PermFinancialRead}, persisted.Role.Permissions)
}

func TestRefreshFailureClearsSession(t *testing.T) {
	store := NewMemoryStore()
	seedStore(t, store, testPrincipal())

	session := NewSession(store, func(ctx context.Context) (*shared.Principal, error) {
		return nil, errors.New("token rejected")
	}, slog.Default())
	session.Init()

	_, err := session.Refresh(context.Background())
	require.Error(t, err)
	require.Equal(t, StateAnonymous, session.State())
	require.Nil(t, session.Principal())
	_, ok := store.Get(StorageKeyToken)
	require.False(t, ok)
}

func TestRefreshWithoutSession(t *testing.T) {
	session := NewSession(NewMemoryStore(), nil, slog.Default())
	session.Init()

	_, err := session.Refresh(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestConcurrentRefreshSharesOneFetch(t *testing.T) {
	store := NewMemoryStore()
	seedStore(t, store, testPrincipal())

	var calls atomic.Int32
	var fetchOnce sync.Once
	fetchStarted := make(chan struct{})
	release := make(chan struct{})
	session := NewSession(store, func(ctx context.Context) (*shared.Principal, error) {
		calls.Add(1)
		fetchOnce.Do(func() { close(fetchStarted) })
		<-release
		return testPrincipal(), nil
	}, slog.Default())
	session.Init()

	// first caller occupies the in-flight slot and blocks inside the fetch
	firstDone := make(chan error, 1)
	go func() {
		_, err := session.Refresh(context.Background())
		firstDone <- err
	}()
	<-fetchStarted

	// the rest join only while that fetch is still blocked, so they must
	// attach to it rather than start their own
	var joined sync.WaitGroup
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		joined.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			joined.Done()
			_, err := session.Refresh(context.Background())
			require.NoError(t, err)
		}()
	}
	joined.Wait()
	close(release)

	require.NoError(t, <-firstDone)
	wg.Wait()
	require.Equal(t, int32(1), calls.Load())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(StorageKeyToken, "disk-token"))
	require.NoError(t, store.Set(StorageKeyUser, `{"id":1}`))
	require.NoError(t, store.Delete(StorageKeyUser))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	token, ok := reopened.Get(StorageKeyToken)
	require.True(t, ok)
	require.Equal(t, "disk-token", token)
	_, ok = reopened.Get(StorageKeyUser)
	require.False(t, ok)
}
