package inventory

// CreateWarehouseRequest is the payload for creating a warehouse.
type CreateWarehouseRequest struct {
	Code     string  `json:"code" validate:"required,max=20"`
	Name     string  `json:"name" validate:"required,max=120"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

// CreateToolRequest is the payload for registering a tool.
type CreateToolRequest struct {
	Code         string  `json:"code" validate:"required,max=30"`
	Name         string  `json:"name" validate:"required,max=120"`
	SerialNumber *string `json:"serial_number,omitempty" validate:"omitempty,max=60"`
	WarehouseID  int64   `json:"warehouse_id" validate:"required,gt=0"`
	Notes        *string `json:"notes,omitempty"`
}

// ToolStatusRequest changes a tool's lifecycle status.
type ToolStatusRequest struct {
	Status     ToolStatus `json:"status" validate:"required,oneof=AVAILABLE ASSIGNED MAINTENANCE RETIRED"`
	AssignedTo *int64     `json:"assigned_to,omitempty" validate:"omitempty,gt=0"`
}

// CreateMaterialRequest is the payload for registering a material.
type CreateMaterialRequest struct {
	Code        string  `json:"code" validate:"required,max=30"`
	Name        string  `json:"name" validate:"required,max=120"`
	UOM         string  `json:"uom" validate:"required,max=20"`
	MinStock    float64 `json:"min_stock" validate:"gte=0"`
	UnitCost    float64 `json:"unit_cost" validate:"gte=0"`
	WarehouseID int64   `json:"warehouse_id" validate:"required,gt=0"`
}

// AdjustStockRequest changes a material's stock quantity by a delta.
type AdjustStockRequest struct {
	Delta float64 `json:"delta" validate:"required"`
	Note  string  `json:"note" validate:"max=200"`
}
