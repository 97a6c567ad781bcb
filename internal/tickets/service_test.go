package tickets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helios-energy/helios-admin/internal/clients"
)

type memoryRepo struct {
	tickets  map[int64]Ticket
	comments map[int64][]TicketComment
	nextID   int64
	seq      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		tickets:  make(map[int64]Ticket),
		comments: make(map[int64][]TicketComment),
	}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListTicketsRequest) ([]TicketWithNames, int, error) {
	var out []TicketWithNames
	for _, t := range r.tickets {
		if req.Status != nil && t.Status != *req.Status {
			continue
		}
		if req.Breached != nil && t.SLABreached != *req.Breached {
			continue
		}
		out = append(out, TicketWithNames{Ticket: t})
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, t Ticket) (Ticket, error) {
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tickets[t.ID] = t
	return t, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status TicketStatus, resolvedAt, closedAt *time.Time) (Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	t.Status = status
	if resolvedAt != nil {
		t.ResolvedAt = resolvedAt
	}
	if closedAt != nil {
		t.ClosedAt = closedAt
	}
	r.tickets[id] = t
	return t, nil
}

func (r *memoryRepo) Assign(ctx context.Context, id int64, userID int64) (Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	t.AssignedTo = &userID
	r.tickets[id] = t
	return t, nil
}

func (r *memoryRepo) MarkBreached(ctx context.Context, cutoff time.Time) ([]Ticket, error) {
	var out []Ticket
	for id, t := range r.tickets {
		if t.SLABreached {
			continue
		}
		if t.Status != TicketStatusOpen && t.Status != TicketStatusInProgress {
			continue
		}
		if t.SLADue.Before(cutoff) {
			t.SLABreached = true
			r.tickets[id] = t
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryRepo) InsertComment(ctx context.Context, c TicketComment) (TicketComment, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.comments[c.TicketID] = append(r.comments[c.TicketID], c)
	return c, nil
}

func (r *memoryRepo) ListComments(ctx context.Context, ticketID int64) ([]TicketComment, error) {
	return r.comments[ticketID], nil
}

func (r *memoryRepo) NextCode(ctx context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("TK-%06d", r.seq), nil
}

type stubClientRepo struct{}

func (stubClientRepo) Get(ctx context.Context, id int64) (*clients.Client, error) {
	if id != 1 {
		return nil, clients.ErrNotFound
	}
	return &clients.Client{ID: id, Name: "Helio Haus"}, nil
}
func (stubClientRepo) List(ctx context.Context, req clients.ListClientsRequest) ([]clients.Client, int, error) {
	return nil, 0, nil
}
func (stubClientRepo) Create(ctx context.Context, c clients.Client) (int64, error) { return 0, nil }
func (stubClientRepo) Update(ctx context.Context, c clients.Client) error          { return nil }
func (stubClientRepo) SetActive(ctx context.Context, id int64, active bool) error  { return nil }
func (stubClientRepo) GenerateCode(ctx context.Context) (string, error)            { return "", nil }

func newTestService(now time.Time) (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubClientRepo{})
	svc.now = func() time.Time { return now }
	return svc, repo
}

func open(t *testing.T, svc *Service, priority TicketPriority) Ticket {
	t.Helper()
	ticket, err := svc.Create(context.Background(), CreateTicketRequest{
		ClientID:    1,
		Subject:     "Inverter offline",
		Description: "Site reports zero production since 06:00.",
		Priority:    priority,
	}, 4)
	require.NoError(t, err)
	return ticket
}

func TestCreateDerivesSLAFromPriority(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)

	ticket := open(t, svc, PriorityCritical)
	require.Equal(t, "TK-000001", ticket.Code)
	require.Equal(t, TicketStatusOpen, ticket.Status)
	require.Equal(t, now.Add(4*time.Hour), ticket.SLADue)

	low := open(t, svc, PriorityLow)
	require.Equal(t, now.Add(5*24*time.Hour), low.SLADue)
}

func TestStatusFlow(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	ticket := open(t, svc, PriorityMedium)

	// Open tickets cannot jump straight to resolved.
	_, err := svc.ChangeStatus(ctx, ticket.ID, TicketStatusResolved)
	require.ErrorIs(t, err, ErrInvalidStatus)

	ticket, err = svc.ChangeStatus(ctx, ticket.ID, TicketStatusInProgress)
	require.NoError(t, err)

	ticket, err = svc.ChangeStatus(ctx, ticket.ID, TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)

	ticket, err = svc.ChangeStatus(ctx, ticket.ID, TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, ticket.ClosedAt)

	// Closed is terminal.
	_, err = svc.ChangeStatus(ctx, ticket.ID, TicketStatusOpen)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResolvedTicketCanReopen(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	ticket := open(t, svc, PriorityMedium)
	_, err := svc.ChangeStatus(ctx, ticket.ID, TicketStatusInProgress)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, ticket.ID, TicketStatusResolved)
	require.NoError(t, err)

	ticket, err = svc.ChangeStatus(ctx, ticket.ID, TicketStatusOpen)
	require.NoError(t, err)
	require.Equal(t, TicketStatusOpen, ticket.Status)
}

func TestAssignMovesOpenToInProgress(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	ticket := open(t, svc, PriorityHigh)
	ticket, err := svc.Assign(ctx, ticket.ID, 7)
	require.NoError(t, err)
	require.Equal(t, TicketStatusInProgress, ticket.Status)

	got, err := svc.Get(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	require.Equal(t, int64(7), *got.AssignedTo)
}

func TestAssignClosedTicketRefused(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	ticket := open(t, svc, PriorityMedium)
	_, err := svc.ChangeStatus(ctx, ticket.ID, TicketStatusClosed)
	require.NoError(t, err)

	_, err = svc.Assign(ctx, ticket.ID, 7)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestScanSLAFlagsOverdueOnce(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	ctx := context.Background()

	critical := open(t, svc, PriorityCritical)
	open(t, svc, PriorityLow)

	// Five hours later the critical ticket is past its 4h window.
	svc.now = func() time.Time { return now.Add(5 * time.Hour) }

	breached, err := svc.ScanSLA(ctx)
	require.NoError(t, err)
	require.Len(t, breached, 1)
	require.Equal(t, critical.ID, breached[0].ID)
	require.True(t, breached[0].SLABreached)

	// Second scan reports nothing new.
	breached, err = svc.ScanSLA(ctx)
	require.NoError(t, err)
	require.Empty(t, breached)
}

func TestCommentsRoundTrip(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	ticket := open(t, svc, PriorityMedium)

	_, err := svc.AddComment(ctx, ticket.ID, 4, "  Called the site manager.  ")
	require.NoError(t, err)

	comments, err := svc.Comments(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "Called the site manager.", comments[0].Body)

	_, err = svc.AddComment(ctx, 99, 4, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
