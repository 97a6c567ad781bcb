package quotations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helios-energy/helios-admin/internal/clients"
)

type memoryRepo struct {
	quotations map[int64]Quotation
	lines      map[int64][]QuotationLine
	nextID     int64
	seq        int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		quotations: make(map[int64]Quotation),
		lines:      make(map[int64][]QuotationLine),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	q.Lines = append([]QuotationLine(nil), r.lines[id]...)
	return &q, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithClient, int, error) {
	var out []QuotationWithClient
	for _, q := range r.quotations {
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		out = append(out, QuotationWithClient{Quotation: q})
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, q Quotation) (int64, error) {
	r.nextID++
	q.ID = r.nextID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	r.quotations[q.ID] = q
	return q.ID, nil
}

func (r *memoryRepo) UpdateHeader(ctx context.Context, id int64, q Quotation) error {
	existing, ok := r.quotations[id]
	if !ok {
		return ErrNotFound
	}
	existing.QuoteDate = q.QuoteDate
	existing.ValidUntil = q.ValidUntil
	existing.Notes = q.Notes
	existing.Subtotal = q.Subtotal
	existing.TaxAmount = q.TaxAmount
	existing.TotalAmount = q.TotalAmount
	r.quotations[id] = existing
	return nil
}

func (r *memoryRepo) InsertLine(ctx context.Context, line QuotationLine) (int64, error) {
	r.nextID++
	line.ID = r.nextID
	r.lines[line.QuotationID] = append(r.lines[line.QuotationID], line)
	return line.ID, nil
}

func (r *memoryRepo) DeleteLines(ctx context.Context, quotationID int64) error {
	delete(r.lines, quotationID)
	return nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status QuotationStatus, decidedBy *int64, reason *string) error {
	q, ok := r.quotations[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = status
	if decidedBy != nil {
		q.DecidedBy = decidedBy
		now := time.Now()
		q.DecidedAt = &now
	}
	if reason != nil {
		q.RejectionReason = reason
	}
	r.quotations[id] = q
	return nil
}

func (r *memoryRepo) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, q := range r.quotations {
		if q.Status == QuotationStatusSent && q.ValidUntil.Before(cutoff) {
			q.Status = QuotationStatusExpired
			r.quotations[id] = q
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), r.seq), nil
}

type stubClientRepo struct{ known map[int64]bool }

func (s *stubClientRepo) Get(ctx context.Context, id int64) (*clients.Client, error) {
	if !s.known[id] {
		return nil, clients.ErrNotFound
	}
	return &clients.Client{ID: id, Name: "Helio Haus"}, nil
}

func (s *stubClientRepo) List(ctx context.Context, req clients.ListClientsRequest) ([]clients.Client, int, error) {
	return nil, 0, nil
}
func (s *stubClientRepo) Create(ctx context.Context, c clients.Client) (int64, error) { return 0, nil }
func (s *stubClientRepo) Update(ctx context.Context, c clients.Client) error          { return nil }
func (s *stubClientRepo) SetActive(ctx context.Context, id int64, active bool) error  { return nil }
func (s *stubClientRepo) GenerateCode(ctx context.Context) (string, error)            { return "", nil }

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, &stubClientRepo{known: map[int64]bool{1: true}}), repo
}

func draftRequest() CreateQuotationRequest {
	return CreateQuotationRequest{
		ClientID:   1,
		QuoteDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Currency:   "EUR",
		Lines: []CreateQuotationLineReq{
			{Description: "PV panel 450W", Quantity: 10, UOM: "pcs", UnitPrice: 200, TaxPercent: 19},
			{Description: "Installation labour", Quantity: 16, UOM: "h", UnitPrice: 85, DiscountPercent: 10, TaxPercent: 19},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, draftRequest(), 5)
	require.NoError(t, err)
	require.Equal(t, QuotationStatusDraft, q.Status)
	require.Equal(t, "QT-2603-0001", q.DocNumber)
	require.Len(t, q.Lines, 2)

	// Line 1: 10 * 200 = 2000 net, 380 tax.
	// Line 2: 16 * 85 = 1360 gross, 136 discount, 1224 net, 232.56 tax.
	require.InDelta(t, 3224.0, q.Subtotal, 0.001)
	require.InDelta(t, 612.56, q.TaxAmount, 0.001)
	require.InDelta(t, 3836.56, q.TotalAmount, 0.001)
}

func TestCreateRejectsUnknownClient(t *testing.T) {
	svc, _ := newTestService()
	req := draftRequest()
	req.ClientID = 42

	_, err := svc.Create(context.Background(), req, 5)
	require.ErrorIs(t, err, clients.ErrNotFound)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	svc, _ := newTestService()
	req := draftRequest()
	req.ValidUntil = req.QuoteDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), req, 5)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusFlow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, draftRequest(), 5)
	require.NoError(t, err)

	// Approving a draft is refused; it must be sent first.
	_, err = svc.Approve(ctx, q.ID, 9)
	require.ErrorIs(t, err, ErrInvalidStatus)

	q, err = svc.Send(ctx, q.ID, 5)
	require.NoError(t, err)
	require.Equal(t, QuotationStatusSent, q.Status)

	q, err = svc.Approve(ctx, q.ID, 9)
	require.NoError(t, err)
	require.Equal(t, QuotationStatusApproved, q.Status)
	require.NotNil(t, q.DecidedBy)
	require.Equal(t, int64(9), *q.DecidedBy)

	// Terminal: no further transitions.
	_, err = svc.Reject(ctx, q.ID, 9, "late")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRejectRecordsReason(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, draftRequest(), 5)
	require.NoError(t, err)
	_, err = svc.Send(ctx, q.ID, 5)
	require.NoError(t, err)

	q, err = svc.Reject(ctx, q.ID, 9, "budget cut")
	require.NoError(t, err)
	require.Equal(t, QuotationStatusRejected, q.Status)
	require.NotNil(t, q.RejectionReason)
	require.Equal(t, "budget cut", *q.RejectionReason)
}

func TestUpdateOnlyDraft(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, draftRequest(), 5)
	require.NoError(t, err)

	notes := "includes scaffolding"
	q, err = svc.Update(ctx, q.ID, UpdateQuotationRequest{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, &notes, q.Notes)

	_, err = svc.Send(ctx, q.ID, 5)
	require.NoError(t, err)

	_, err = svc.Update(ctx, q.ID, UpdateQuotationRequest{Notes: &notes})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateReplacesLinesAndTotals(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, draftRequest(), 5)
	require.NoError(t, err)

	newLines := []CreateQuotationLineReq{
		{Description: "Inverter 5kW", Quantity: 1, UOM: "pcs", UnitPrice: 1500, TaxPercent: 19},
	}
	q, err = svc.Update(ctx, q.ID, UpdateQuotationRequest{Lines: &newLines})
	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	require.InDelta(t, 1500.0, q.Subtotal, 0.001)
	require.InDelta(t, 1785.0, q.TotalAmount, 0.001)
}

func TestExpireOverdue(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	q, err := svc.Create(ctx, draftRequest(), 5)
	require.NoError(t, err)
	_, err = svc.Send(ctx, q.ID, 5)
	require.NoError(t, err)

	// Still valid at the cutoff: untouched.
	n, err := svc.ExpireOverdue(ctx, q.ValidUntil.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = svc.ExpireOverdue(ctx, q.ValidUntil.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := repo.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, QuotationStatusExpired, got.Status)
}
