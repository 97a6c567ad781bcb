package inventory

import "context"

// Repository defines data access for warehouses, tools and materials.
type Repository interface {
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (Warehouse, error)
	CreateWarehouse(ctx context.Context, w Warehouse) (Warehouse, error)

	ListTools(ctx context.Context, warehouseID int64) ([]Tool, error)
	GetTool(ctx context.Context, id int64) (Tool, error)
	CreateTool(ctx context.Context, t Tool) (Tool, error)
	UpdateToolStatus(ctx context.Context, id int64, status ToolStatus, assignedTo *int64) (Tool, error)

	ListMaterials(ctx context.Context, warehouseID int64) ([]Material, error)
	GetMaterial(ctx context.Context, id int64) (Material, error)
	CreateMaterial(ctx context.Context, m Material) (Material, error)
	SetMaterialStock(ctx context.Context, id int64, qty float64) (Material, error)
}
