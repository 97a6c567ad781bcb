package inventory

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the record does not exist.
	ErrNotFound = errors.New("inventory: record not found")
	// ErrNegativeStock indicates an adjustment would drive stock below zero.
	ErrNegativeStock = errors.New("inventory: stock cannot go negative")
	// ErrInvalidTransition indicates a tool status transition is not allowed.
	ErrInvalidTransition = errors.New("inventory: invalid status transition")
)

// ToolStatus is the lifecycle state of a field tool.
type ToolStatus string

const (
	ToolAvailable   ToolStatus = "AVAILABLE"
	ToolAssigned    ToolStatus = "ASSIGNED"
	ToolMaintenance ToolStatus = "MAINTENANCE"
	ToolRetired     ToolStatus = "RETIRED"
)

// Warehouse is a physical storage location.
type Warehouse struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Location  *string   `json:"location,omitempty" db:"location"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Tool is a serialized piece of field equipment.
type Tool struct {
	ID           int64      `json:"id" db:"id"`
	Code         string     `json:"code" db:"code"`
	Name         string     `json:"name" db:"name"`
	SerialNumber *string    `json:"serial_number,omitempty" db:"serial_number"`
	Status       ToolStatus `json:"status" db:"status"`
	WarehouseID  int64      `json:"warehouse_id" db:"warehouse_id"`
	AssignedTo   *int64     `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Material is a consumable stock item.
type Material struct {
	ID          int64     `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	UOM         string    `json:"uom" db:"uom"`
	StockQty    float64   `json:"stock_qty" db:"stock_qty"`
	MinStock    float64   `json:"min_stock" db:"min_stock"`
	UnitCost    float64   `json:"unit_cost" db:"unit_cost"`
	WarehouseID int64     `json:"warehouse_id" db:"warehouse_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// validTransitions maps each tool status to its permitted successors.
var validTransitions = map[ToolStatus][]ToolStatus{
	ToolAvailable:   {ToolAssigned, ToolMaintenance, ToolRetired},
	ToolAssigned:    {ToolAvailable, ToolMaintenance},
	ToolMaintenance: {ToolAvailable, ToolRetired},
	ToolRetired:     {},
}

// CanTransition reports whether a tool may move from one status to another.
func CanTransition(from, to ToolStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
