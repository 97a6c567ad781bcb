package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type client struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func clientStore(seed ...client) *Store[client] {
	s := NewStore(Config[client]{
		ID: func(c client) int64 { return c.ID },
		ToggleActive: func(c client) client {
			c.Active = !c.Active
			return c
		},
	})
	records := make([]Record[client], len(seed))
	for i, c := range seed {
		records[i] = Record[client]{Value: c}
	}
	s.records = records
	return s
}

func TestCreateRollbackRestoresCollection(t *testing.T) {
	store := clientStore(
		client{ID: 1, Name: "Alpha Solar", Active: true},
		client{ID: 2, Name: "Borealis Wind", Active: true},
	)

	err := store.Create(context.Background(), client{Name: "Ghost Corp"},
		func(ctx context.Context, c client) (Result[client], error) {
			// the temp record must be visible while the call is in flight
			records := store.Records()
			require.Len(t, records, 3)
			require.True(t, records[2].Optimistic)
			require.NotEmpty(t, records[2].TempID)
			return Result[client]{Success: false, Message: "name already taken"}, nil
		})

	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, "name already taken", merr.Message)

	items := store.Items()
	require.Len(t, items, 2)
	require.Equal(t, "Alpha Solar", items[0].Name)
	require.Equal(t, "Borealis Wind", items[1].Name)
	require.False(t, store.Loading())
	require.Equal(t, "name already taken", store.Err())
}

func TestCreateCommitAdoptsServerRecord(t *testing.T) {
	store := clientStore(client{ID: 1, Name: "Alpha Solar", Active: true})

	err := store.Create(context.Background(), client{Name: "Nova Grid"},
		func(ctx context.Context, c client) (Result[client], error) {
			return Result[client]{Success: true, Data: client{ID: 42, Name: "Nova Grid", Active: true}}, nil
		})
	require.NoError(t, err)

	records := store.Records()
	require.Len(t, records, 2)
	require.Equal(t, int64(42), records[1].Value.ID)
	require.Empty(t, records[1].TempID)
	require.False(t, records[1].Optimistic)
	require.False(t, store.Loading())
	require.Empty(t, store.Err())
}

func TestUpdateRollbackRestoresFullSnapshot(t *testing.T) {
	original := client{ID: 7, Name: "Original Name", Active: true}
	store := clientStore(original)

	err := store.Update(context.Background(), client{ID: 7, Name: "Edited Name", Active: false},
		func(ctx context.Context, id int64, c client) (Result[client], error) {
			require.Equal(t, int64(7), id)
			require.Equal(t, "Edited Name", store.Items()[0].Name)
			return Result[client]{}, errors.New("connection reset")
		})

	var merr *MutationError
	require.ErrorAs(t, err, &merr)

	// every field is back, not just the edited ones
	items := store.Items()
	require.Equal(t, original, items[0])
	require.False(t, store.Loading())
	require.Equal(t, "connection reset", store.Err())
}

func TestUpdateCommitUsesServerData(t *testing.T) {
	store := clientStore(client{ID: 7, Name: "Original Name", Active: true})

	err := store.Update(context.Background(), client{ID: 7, Name: "Edited Name", Active: true},
		func(ctx context.Context, id int64, c client) (Result[client], error) {
			return Result[client]{Success: true, Data: client{ID: 7, Name: "Edited Name (verified)", Active: true}}, nil
		})
	require.NoError(t, err)
	require.Equal(t, "Edited Name (verified)", store.Items()[0].Name)
	require.False(t, store.Records()[0].Optimistic)
}

func TestDeleteRollbackRestoresOrder(t *testing.T) {
	store := clientStore(
		client{ID: 1, Name: "First"},
		client{ID: 2, Name: "Second"},
		client{ID: 3, Name: "Third"},
	)

	err := store.Delete(context.Background(), client{ID: 2},
		func(ctx context.Context, id int64) (Result[struct{}], error) {
			require.Len(t, store.Items(), 2)
			return Result[struct{}]{Success: false, Message: "record is referenced"}, nil
		})

	var merr *MutationError
	require.ErrorAs(t, err, &merr)

	items := store.Items()
	require.Len(t, items, 3)
	require.Equal(t, "First", items[0].Name)
	require.Equal(t, "Second", items[1].Name)
	require.Equal(t, "Third", items[2].Name)
}

func TestDeleteCommitRemovesRecord(t *testing.T) {
	store := clientStore(client{ID: 1, Name: "First"}, client{ID: 2, Name: "Second"})

	err := store.Delete(context.Background(), client{ID: 1},
		func(ctx context.Context, id int64) (Result[struct{}], error) {
			return Result[struct{}]{Success: true}, nil
		})
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, int64(2), items[0].ID)
}

func TestToggleDoubleFailureNetsToOriginal(t *testing.T) {
	store := clientStore(client{ID: 5, Name: "Flip", Active: true})
	fail := func(ctx context.Context, id int64) (Result[client], error) {
		return Result[client]{Success: false, Message: "toggle refused"}, nil
	}

	require.Error(t, store.ToggleStatus(context.Background(), client{ID: 5}, fail))
	require.True(t, store.Items()[0].Active)

	require.Error(t, store.ToggleStatus(context.Background(), client{ID: 5}, fail))
	require.True(t, store.Items()[0].Active)
}

func TestToggleCommitFlipsFlag(t *testing.T) {
	store := clientStore(client{ID: 5, Name: "Flip", Active: true})

	err := store.ToggleStatus(context.Background(), client{ID: 5},
		func(ctx context.Context, id int64) (Result[client], error) {
			// the optimistic flip is already visible
			require.False(t, store.Items()[0].Active)
			return Result[client]{Success: true, Data: client{ID: 5, Name: "Flip", Active: false}}, nil
		})
	require.NoError(t, err)
	require.False(t, store.Items()[0].Active)
}

func TestMutationOnUnknownIDFails(t *testing.T) {
	store := clientStore(client{ID: 1, Name: "Only"})

	err := store.Update(context.Background(), client{ID: 99, Name: "Nope"},
		func(ctx context.Context, id int64, c client) (Result[client], error) {
			t.Fatal("remote call must not run for an unknown id")
			return Result[client]{}, nil
		})
	require.ErrorIs(t, err, ErrNotFound)
	require.Len(t, store.Items(), 1)
}

func TestConcurrentMutationRejectedBusy(t *testing.T) {
	store := clientStore(client{ID: 1, Name: "Only", Active: true})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.Update(context.Background(), client{ID: 1, Name: "Changed", Active: true},
			func(ctx context.Context, id int64, c client) (Result[client], error) {
				close(started)
				<-release
				return Result[client]{Success: true, Data: c}, nil
			})
	}()

	<-started
	err := store.Delete(context.Background(), client{ID: 1},
		func(ctx context.Context, id int64) (Result[struct{}], error) {
			return Result[struct{}]{Success: true}, nil
		})
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, "Changed", store.Items()[0].Name)
}

func TestReloadReplacesCollection(t *testing.T) {
	store := clientStore(client{ID: 1, Name: "Stale"})

	err := store.Reload(context.Background(), func(ctx context.Context) (Result[[]client], error) {
		return Result[[]client]{Success: true, Data: []client{
			{ID: 10, Name: "Fresh A"},
			{ID: 11, Name: "Fresh B"},
		}}, nil
	})
	require.NoError(t, err)
	require.Len(t, store.Items(), 2)
	require.Equal(t, "Fresh A", store.Items()[0].Name)
}

func TestReloadFailureKeepsExisting(t *testing.T) {
	store := clientStore(client{ID: 1, Name: "Kept"})

	err := store.Reload(context.Background(), func(ctx context.Context) (Result[[]client], error) {
		return Result[[]client]{}, errors.New("gateway timeout")
	})
	require.Error(t, err)
	require.Len(t, store.Items(), 1)
	require.Equal(t, "Kept", store.Items()[0].Name)
	require.Equal(t, "gateway timeout", store.Err())
}
