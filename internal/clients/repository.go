package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("clients: record not found")
	// ErrAlreadyExists indicates a code or tax id collision.
	ErrAlreadyExists = errors.New("clients: record already exists")
)

// Repository defines data access for clients.
type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, client Client) (int64, error)
	Update(ctx context.Context, client Client) error
	SetActive(ctx context.Context, id int64, active bool) error
	GenerateCode(ctx context.Context) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const clientColumns = `id, code, name, email, phone, tax_id, address_line1, address_line2, city, state, postal_code, country, is_active, notes, created_by, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.TaxID,
		&c.AddressLine1, &c.AddressLine2, &c.City, &c.State, &c.PostalCode,
		&c.Country, &c.IsActive, &c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT `+clientColumns+` FROM clients%s ORDER BY name LIMIT $%d OFFSET $%d`,
		where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, client Client) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clients (code, name, email, phone, tax_id, address_line1, address_line2, city, state, postal_code, country, is_active, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, $13)
		 RETURNING id`,
		client.Code, client.Name, client.Email, client.Phone, client.TaxID,
		client.AddressLine1, client.AddressLine2, client.City, client.State,
		client.PostalCode, client.Country, client.Notes, client.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, client Client) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET name = $2, email = $3, phone = $4, tax_id = $5,
		 address_line1 = $6, address_line2 = $7, city = $8, state = $9,
		 postal_code = $10, country = $11, notes = $12, updated_at = NOW()
		 WHERE id = $1`,
		client.ID, client.Name, client.Email, client.Phone, client.TaxID,
		client.AddressLine1, client.AddressLine2, client.City, client.State,
		client.PostalCode, client.Country, client.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateCode produces the next CL-xxxxx code.
func (r *repository) GenerateCode(ctx context.Context) (string, error) {
	var next int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM clients`).Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CL-%05d", next), nil
}
