package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios-energy/helios-admin/internal/platform/db"
)

var ErrNotFound = errors.New("quotations: record not found")

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithClient, int, error)
	Create(ctx context.Context, quotation Quotation) (int64, error)
	UpdateHeader(ctx context.Context, id int64, q Quotation) error
	InsertLine(ctx context.Context, line QuotationLine) (int64, error)
	DeleteLines(ctx context.Context, quotationID int64) error
	UpdateStatus(ctx context.Context, id int64, status QuotationStatus, decidedBy *int64, reason *string) error
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `id, doc_number, client_id, quote_date, valid_until, status, currency,
	subtotal, tax_amount, total_amount, notes, created_by, decided_by, decided_at,
	rejection_reason, created_at, updated_at`

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(&q.ID, &q.DocNumber, &q.ClientID, &q.QuoteDate, &q.ValidUntil, &q.Status,
		&q.Currency, &q.Subtotal, &q.TaxAmount, &q.TotalAmount, &q.Notes, &q.CreatedBy,
		&q.DecidedBy, &q.DecidedAt, &q.RejectionReason, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, quotation_id, description, quantity, uom, unit_price,
		        discount_percent, discount_amount, tax_percent, tax_amount, line_total, line_order
		 FROM quotation_lines WHERE quotation_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l QuotationLine
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.Description, &l.Quantity, &l.UOM,
			&l.UnitPrice, &l.DiscountPercent, &l.DiscountAmount, &l.TaxPercent,
			&l.TaxAmount, &l.LineTotal, &l.LineOrder); err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithClient, int, error) {
	conditions := []string{"1 = 1"}
	var args []interface{}
	argPos := 1

	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("q.client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.quote_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotations q %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT q.id, q.doc_number, q.client_id, q.quote_date, q.valid_until, q.status, q.currency,
		       q.subtotal, q.tax_amount, q.total_amount, q.notes, q.created_by, q.decided_by,
		       q.decided_at, q.rejection_reason, q.created_at, q.updated_at,
		       c.name AS client_name,
		       u.name AS created_by_name
		FROM quotations q
		JOIN clients c ON q.client_id = c.id
		JOIN users u ON q.created_by = u.id
		%s
		ORDER BY q.quote_date DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []QuotationWithClient
	for rows.Next() {
		var q QuotationWithClient
		if err := rows.Scan(&q.ID, &q.DocNumber, &q.ClientID, &q.QuoteDate, &q.ValidUntil,
			&q.Status, &q.Currency, &q.Subtotal, &q.TaxAmount, &q.TotalAmount, &q.Notes,
			&q.CreatedBy, &q.DecidedBy, &q.DecidedAt, &q.RejectionReason,
			&q.CreatedAt, &q.UpdatedAt, &q.ClientName, &q.CreatedByName); err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (doc_number, client_id, quote_date, valid_until, status, currency,
		                        subtotal, tax_amount, total_amount, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, q.DocNumber, q.ClientID, q.QuoteDate, q.ValidUntil, q.Status, q.Currency,
		q.Subtotal, q.TaxAmount, q.TotalAmount, q.Notes, q.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) UpdateHeader(ctx context.Context, id int64, q Quotation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET quote_date = $2, valid_until = $3, notes = $4,
		    subtotal = $5, tax_amount = $6, total_amount = $7, updated_at = NOW()
		WHERE id = $1
	`, id, q.QuoteDate, q.ValidUntil, q.Notes, q.Subtotal, q.TaxAmount, q.TotalAmount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line QuotationLine) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_lines (quotation_id, description, quantity, uom, unit_price,
		                             discount_percent, discount_amount, tax_percent, tax_amount,
		                             line_total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, line.QuotationID, line.Description, line.Quantity, line.UOM, line.UnitPrice,
		line.DiscountPercent, line.DiscountAmount, line.TaxPercent, line.TaxAmount,
		line.LineTotal, line.LineOrder).Scan(&id)
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quotation_lines WHERE quotation_id = $1`, quotationID)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status QuotationStatus, decidedBy *int64, reason *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET status = $2,
		    decided_by = COALESCE($3, decided_by),
		    decided_at = CASE WHEN $3::bigint IS NOT NULL THEN NOW() ELSE decided_at END,
		    rejection_reason = COALESCE($4, rejection_reason),
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, decidedBy, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireBefore marks sent quotations whose validity window has passed. It
// returns the number of documents expired.
func (r *repository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET status = $1, updated_at = NOW()
		WHERE status = $2 AND valid_until < $3
	`, QuotationStatusExpired, QuotationStatusSent, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	// QT-{YY}{MM}-{SEQ}
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}
