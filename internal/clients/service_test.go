package clients

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	records map[int64]Client
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]Client)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Client, error) {
	c, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var out []Client
	for _, c := range r.records {
		if req.IsActive != nil && c.IsActive != *req.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, client Client) (int64, error) {
	r.nextID++
	client.ID = r.nextID
	client.IsActive = true
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	r.records[client.ID] = client
	return client.ID, nil
}

func (r *memoryRepo) Update(ctx context.Context, client Client) error {
	if _, ok := r.records[client.ID]; !ok {
		return ErrNotFound
	}
	r.records[client.ID] = client
	return nil
}

func (r *memoryRepo) SetActive(ctx context.Context, id int64, active bool) error {
	c, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	c.IsActive = active
	r.records[id] = c
	return nil
}

func (r *memoryRepo) GenerateCode(ctx context.Context) (string, error) {
	return fmt.Sprintf("CL-%05d", r.nextID+1), nil
}

func TestCreateAssignsCode(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	client, err := svc.Create(ctx, CreateClientRequest{Name: " Solar Partners ", Country: "de"}, 3)
	require.NoError(t, err)
	require.Equal(t, "CL-00001", client.Code)
	require.Equal(t, "Solar Partners", client.Name)
	require.Equal(t, "DE", client.Country)
	require.True(t, client.IsActive)
}

func TestListSortsWithCollation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for _, name := range []string{"Zeta Grid", "Ärger Energie", "alpha wind", "Antares Solar"} {
		_, err := svc.Create(ctx, CreateClientRequest{Name: name, Country: "DE"}, 1)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, ListClientsRequest{})
	require.NoError(t, err)
	require.Equal(t, 4, total)

	names := make([]string, len(items))
	for i, c := range items {
		names[i] = c.Name
	}
	// Case-insensitive, accent-aware ordering.
	require.Equal(t, []string{"alpha wind", "Antares Solar", "Ärger Energie", "Zeta Grid"}, names)
}

func TestToggleActiveRoundTrip(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	client, err := svc.Create(ctx, CreateClientRequest{Name: "Helio Haus", Country: "AT"}, 1)
	require.NoError(t, err)

	client, err = svc.ToggleActive(ctx, client.ID)
	require.NoError(t, err)
	require.False(t, client.IsActive)

	client, err = svc.ToggleActive(ctx, client.ID)
	require.NoError(t, err)
	require.True(t, client.IsActive)
}
