package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	rows       []Entry
	lastLimit  int
	lastOffset int
}

func (s *stubRepo) Insert(ctx context.Context, e Entry) error { return nil }

func (s *stubRepo) Window(ctx context.Context, f TimelineFilters, limit, offset int) ([]Entry, error) {
	s.lastLimit = limit
	s.lastOffset = offset
	if len(s.rows) > limit {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func (s *stubRepo) All(ctx context.Context, f TimelineFilters) ([]Entry, error) {
	return s.rows, nil
}

func entry(ts string, actor, action, entity string) Entry {
	at, _ := time.Parse(time.RFC3339, ts)
	return Entry{At: at, Actor: actor, Action: action, Entity: entity, EntityID: "1"}
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubRepo{rows: []Entry{
		entry("2026-03-10T10:00:00Z", "ops@helios.energy", "PUT", "/clients/{id}"),
		entry("2026-03-09T09:00:00Z", "ops@helios.energy", "POST", "/clients"),
		entry("2026-03-08T08:00:00Z", "admin@helios.energy", "POST", "/roles"),
	}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.True(t, result.Paging.HasNext)
	require.Equal(t, 2, result.Paging.NextPage)
	// One extra row is requested to detect the next page.
	require.Equal(t, 3, repo.lastLimit)
	require.Equal(t, 0, repo.lastOffset)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, 51, repo.lastLimit)

	_, err = svc.Timeline(context.Background(), TimelineFilters{PageSize: -1, Page: -4})
	require.NoError(t, err)
	require.Equal(t, 21, repo.lastLimit)
	require.Equal(t, 0, repo.lastOffset)
}

func TestExportCSV(t *testing.T) {
	repo := &stubRepo{rows: []Entry{
		entry("2026-03-10T10:00:00Z", "ops@helios.energy", "PUT", "/clients/{id}"),
		entry("2026-03-09T09:00:00Z", "ops@helios.energy", "POST", "/clients"),
	}}
	svc := NewService(repo)

	data, err := svc.ExportCSV(context.Background(), TimelineFilters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "at,actor,action,entity,entity_id,detail", lines[0])
	require.Contains(t, lines[1], "ops@helios.energy")
}

func TestTimelineWithoutRepo(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Timeline(context.Background(), TimelineFilters{})
	require.Error(t, err)
}
