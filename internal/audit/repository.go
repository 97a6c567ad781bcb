package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to the audit log table.
type Repository interface {
	Insert(ctx context.Context, e Entry) error
	Window(ctx context.Context, f TimelineFilters, limit, offset int) ([]Entry, error)
	All(ctx context.Context, f TimelineFilters) ([]Entry, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Insert(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_id, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ActorID, e.Action, e.Entity, e.EntityID, e.Detail)
	return err
}

func buildFilter(f TimelineFilters) (string, []interface{}) {
	conditions := []string{"1 = 1"}
	var args []interface{}
	argPos := 1

	if !f.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("a.created_at >= $%d", argPos))
		args = append(args, f.From)
		argPos++
	}
	if !f.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("a.created_at <= $%d", argPos))
		args = append(args, f.To)
		argPos++
	}
	if actor := strings.TrimSpace(f.Actor); actor != "" {
		conditions = append(conditions, fmt.Sprintf("u.email ILIKE $%d", argPos))
		args = append(args, "%"+actor+"%")
		argPos++
	}
	if entity := strings.TrimSpace(f.Entity); entity != "" {
		conditions = append(conditions, fmt.Sprintf("a.entity = $%d", argPos))
		args = append(args, entity)
		argPos++
	}
	if action := strings.TrimSpace(f.Action); action != "" {
		conditions = append(conditions, fmt.Sprintf("a.action = $%d", argPos))
		args = append(args, action)
		argPos++
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

const timelineSelect = `
	SELECT a.id, a.created_at, a.actor_id, u.email AS actor, a.action, a.entity, a.entity_id, a.detail
	FROM audit_log a
	JOIN users u ON a.actor_id = u.id
`

func (r *PgRepository) query(ctx context.Context, query string, args []interface{}) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.At, &e.ActorID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PgRepository) Window(ctx context.Context, f TimelineFilters, limit, offset int) ([]Entry, error) {
	whereClause, args := buildFilter(f)
	query := fmt.Sprintf("%s %s ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d",
		timelineSelect, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.query(ctx, query, args)
}

func (r *PgRepository) All(ctx context.Context, f TimelineFilters) ([]Entry, error) {
	whereClause, args := buildFilter(f)
	query := fmt.Sprintf("%s %s ORDER BY a.created_at DESC, a.id DESC", timelineSelect, whereClause)
	return r.query(ctx, query, args)
}
