package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Ticket, error)
	List(ctx context.Context, req ListTicketsRequest) ([]TicketWithNames, int, error)
	Create(ctx context.Context, t Ticket) (Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status TicketStatus, resolvedAt, closedAt *time.Time) (Ticket, error)
	Assign(ctx context.Context, id int64, userID int64) (Ticket, error)
	MarkBreached(ctx context.Context, cutoff time.Time) ([]Ticket, error)
	InsertComment(ctx context.Context, c TicketComment) (TicketComment, error)
	ListComments(ctx context.Context, ticketID int64) ([]TicketComment, error)
	NextCode(ctx context.Context) (string, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const ticketColumns = `id, code, client_id, subject, description, status, priority, assigned_to,
	sla_due, sla_breached, created_by, resolved_at, closed_at, created_at, updated_at`

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.Code, &t.ClientID, &t.Subject, &t.Description, &t.Status,
		&t.Priority, &t.AssignedTo, &t.SLADue, &t.SLABreached, &t.CreatedBy,
		&t.ResolvedAt, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*Ticket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PgRepository) List(ctx context.Context, req ListTicketsRequest) ([]TicketWithNames, int, error) {
	conditions := []string{"1 = 1"}
	var args []interface{}
	argPos := 1

	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("t.client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("t.priority = $%d", argPos))
		args = append(args, *req.Priority)
		argPos++
	}
	if req.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("t.assigned_to = $%d", argPos))
		args = append(args, *req.AssignedTo)
		argPos++
	}
	if req.Breached != nil {
		conditions = append(conditions, fmt.Sprintf("t.sla_breached = $%d", argPos))
		args = append(args, *req.Breached)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM tickets t %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.code, t.client_id, t.subject, t.description, t.status, t.priority,
		       t.assigned_to, t.sla_due, t.sla_breached, t.created_by, t.resolved_at,
		       t.closed_at, t.created_at, t.updated_at,
		       c.name AS client_name,
		       u.name AS assigned_to_name
		FROM tickets t
		JOIN clients c ON t.client_id = c.id
		LEFT JOIN users u ON t.assigned_to = u.id
		%s
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []TicketWithNames
	for rows.Next() {
		var t TicketWithNames
		if err := rows.Scan(&t.ID, &t.Code, &t.ClientID, &t.Subject, &t.Description,
			&t.Status, &t.Priority, &t.AssignedTo, &t.SLADue, &t.SLABreached,
			&t.CreatedBy, &t.ResolvedAt, &t.ClosedAt, &t.CreatedAt, &t.UpdatedAt,
			&t.ClientName, &t.AssignedToName); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *PgRepository) Create(ctx context.Context, t Ticket) (Ticket, error) {
	created, err := scanTicket(r.pool.QueryRow(ctx, `
		INSERT INTO tickets (code, client_id, subject, description, status, priority,
		                     sla_due, sla_breached, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
		RETURNING `+ticketColumns,
		t.Code, t.ClientID, t.Subject, t.Description, t.Status, t.Priority, t.SLADue, t.CreatedBy))
	if err != nil {
		return Ticket{}, err
	}
	return created, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id int64, status TicketStatus, resolvedAt, closedAt *time.Time) (Ticket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `
		UPDATE tickets
		SET status = $2,
		    resolved_at = COALESCE($3, resolved_at),
		    closed_at = COALESCE($4, closed_at),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+ticketColumns,
		id, status, resolvedAt, closedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, err
	}
	return t, nil
}

func (r *PgRepository) Assign(ctx context.Context, id int64, userID int64) (Ticket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `
		UPDATE tickets SET assigned_to = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+ticketColumns,
		id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, err
	}
	return t, nil
}

// MarkBreached flags open tickets whose SLA deadline has passed and returns
// the newly flagged tickets.
func (r *PgRepository) MarkBreached(ctx context.Context, cutoff time.Time) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE tickets SET sla_breached = TRUE, updated_at = NOW()
		WHERE sla_breached = FALSE
		  AND status IN ($1, $2)
		  AND sla_due < $3
		RETURNING `+ticketColumns,
		TicketStatusOpen, TicketStatusInProgress, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PgRepository) InsertComment(ctx context.Context, c TicketComment) (TicketComment, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ticket_comments (ticket_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, ticket_id, author_id, body, created_at`,
		c.TicketID, c.AuthorID, c.Body).
		Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt)
	if err != nil {
		return TicketComment{}, err
	}
	return c, nil
}

func (r *PgRepository) ListComments(ctx context.Context, ticketID int64) ([]TicketComment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, author_id, body, created_at
		FROM ticket_comments WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TicketComment
	for rows.Next() {
		var c TicketComment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgRepository) NextCode(ctx context.Context) (string, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ('TK', 'ALL', 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TK-%06d", seq), nil
}
