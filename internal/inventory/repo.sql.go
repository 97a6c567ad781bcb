package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository provides PostgreSQL backed persistence.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// ListWarehouses returns all warehouses.
func (r *PgRepository) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, location, is_active, created_at, updated_at FROM warehouses ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWarehouse fetches one warehouse.
func (r *PgRepository) GetWarehouse(ctx context.Context, id int64) (Warehouse, error) {
	var w Warehouse
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, location, is_active, created_at, updated_at FROM warehouses WHERE id = $1`, id).
		Scan(&w.ID, &w.Code, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, ErrNotFound
		}
		return Warehouse{}, err
	}
	return w, nil
}

// CreateWarehouse inserts a new warehouse.
func (r *PgRepository) CreateWarehouse(ctx context.Context, w Warehouse) (Warehouse, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO warehouses (code, name, location, is_active) VALUES ($1, $2, $3, TRUE)
		 RETURNING id, code, name, location, is_active, created_at, updated_at`,
		w.Code, w.Name, w.Location).
		Scan(&w.ID, &w.Code, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return Warehouse{}, err
	}
	return w, nil
}

const toolColumns = `id, code, name, serial_number, status, warehouse_id, assigned_to, notes, created_at, updated_at`

func scanTool(row pgx.Row) (Tool, error) {
	var t Tool
	err := row.Scan(&t.ID, &t.Code, &t.Name, &t.SerialNumber, &t.Status, &t.WarehouseID, &t.AssignedTo, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTools returns tools, optionally filtered by warehouse.
func (r *PgRepository) ListTools(ctx context.Context, warehouseID int64) ([]Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools`
	var args []interface{}
	if warehouseID > 0 {
		query += ` WHERE warehouse_id = $1`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY code`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTool fetches one tool.
func (r *PgRepository) GetTool(ctx context.Context, id int64) (Tool, error) {
	t, err := scanTool(r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tool{}, ErrNotFound
		}
		return Tool{}, err
	}
	return t, nil
}

// CreateTool inserts a new tool as available.
func (r *PgRepository) CreateTool(ctx context.Context, t Tool) (Tool, error) {
	created, err := scanTool(r.pool.QueryRow(ctx,
		`INSERT INTO tools (code, name, serial_number, status, warehouse_id, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+toolColumns,
		t.Code, t.Name, t.SerialNumber, ToolAvailable, t.WarehouseID, t.Notes))
	if err != nil {
		return Tool{}, err
	}
	return created, nil
}

// UpdateToolStatus stores a status change.
func (r *PgRepository) UpdateToolStatus(ctx context.Context, id int64, status ToolStatus, assignedTo *int64) (Tool, error) {
	t, err := scanTool(r.pool.QueryRow(ctx,
		`UPDATE tools SET status = $2, assigned_to = $3, updated_at = NOW() WHERE id = $1
		 RETURNING `+toolColumns,
		id, status, assignedTo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tool{}, ErrNotFound
		}
		return Tool{}, err
	}
	return t, nil
}

const materialColumns = `id, code, name, uom, stock_qty, min_stock, unit_cost, warehouse_id, is_active, created_at, updated_at`

func scanMaterial(row pgx.Row) (Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.UOM, &m.StockQty, &m.MinStock, &m.UnitCost, &m.WarehouseID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListMaterials returns materials, optionally filtered by warehouse.
func (r *PgRepository) ListMaterials(ctx context.Context, warehouseID int64) ([]Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials`
	var args []interface{}
	if warehouseID > 0 {
		query += ` WHERE warehouse_id = $1`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY code`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMaterial fetches one material.
func (r *PgRepository) GetMaterial(ctx context.Context, id int64) (Material, error) {
	m, err := scanMaterial(r.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, ErrNotFound
		}
		return Material{}, err
	}
	return m, nil
}

// CreateMaterial inserts a new material with zero stock.
func (r *PgRepository) CreateMaterial(ctx context.Context, m Material) (Material, error) {
	created, err := scanMaterial(r.pool.QueryRow(ctx,
		`INSERT INTO materials (code, name, uom, stock_qty, min_stock, unit_cost, warehouse_id, is_active)
		 VALUES ($1, $2, $3, 0, $4, $5, $6, TRUE)
		 RETURNING `+materialColumns,
		m.Code, m.Name, m.UOM, m.MinStock, m.UnitCost, m.WarehouseID))
	if err != nil {
		return Material{}, err
	}
	return created, nil
}

// SetMaterialStock stores an absolute stock quantity.
func (r *PgRepository) SetMaterialStock(ctx context.Context, id int64, qty float64) (Material, error) {
	m, err := scanMaterial(r.pool.QueryRow(ctx,
		`UPDATE materials SET stock_qty = $2, updated_at = NOW() WHERE id = $1
		 RETURNING `+materialColumns,
		id, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, ErrNotFound
		}
		return Material{}, err
	}
	return m, nil
}
