package inventory

import (
	"context"
	"fmt"
	"strings"
)

// Service implements inventory business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListWarehouses returns all warehouses.
func (s *Service) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

// CreateWarehouse registers a warehouse.
func (s *Service) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (Warehouse, error) {
	w := Warehouse{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:     strings.TrimSpace(req.Name),
		Location: req.Location,
	}
	created, err := s.repo.CreateWarehouse(ctx, w)
	if err != nil {
		return Warehouse{}, fmt.Errorf("create warehouse: %w", err)
	}
	return created, nil
}

// ListTools returns tools, optionally scoped to a warehouse.
func (s *Service) ListTools(ctx context.Context, warehouseID int64) ([]Tool, error) {
	return s.repo.ListTools(ctx, warehouseID)
}

// GetTool fetches one tool.
func (s *Service) GetTool(ctx context.Context, id int64) (Tool, error) {
	return s.repo.GetTool(ctx, id)
}

// CreateTool registers a tool. New tools always start available.
func (s *Service) CreateTool(ctx context.Context, req CreateToolRequest) (Tool, error) {
	if _, err := s.repo.GetWarehouse(ctx, req.WarehouseID); err != nil {
		return Tool{}, err
	}
	t := Tool{
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:         strings.TrimSpace(req.Name),
		SerialNumber: req.SerialNumber,
		Status:       ToolAvailable,
		WarehouseID:  req.WarehouseID,
		Notes:        req.Notes,
	}
	created, err := s.repo.CreateTool(ctx, t)
	if err != nil {
		return Tool{}, fmt.Errorf("create tool: %w", err)
	}
	return created, nil
}

// ChangeToolStatus moves a tool through its lifecycle. Assignment requires a
// target user; leaving the assigned state clears it.
func (s *Service) ChangeToolStatus(ctx context.Context, id int64, req ToolStatusRequest) (Tool, error) {
	tool, err := s.repo.GetTool(ctx, id)
	if err != nil {
		return Tool{}, err
	}
	if !CanTransition(tool.Status, req.Status) {
		return Tool{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tool.Status, req.Status)
	}
	assignedTo := req.AssignedTo
	if req.Status == ToolAssigned && assignedTo == nil {
		return Tool{}, fmt.Errorf("%w: assignment requires a user", ErrInvalidTransition)
	}
	if req.Status != ToolAssigned {
		assignedTo = nil
	}
	return s.repo.UpdateToolStatus(ctx, id, req.Status, assignedTo)
}

// ListMaterials returns materials, optionally scoped to a warehouse.
func (s *Service) ListMaterials(ctx context.Context, warehouseID int64) ([]Material, error) {
	return s.repo.ListMaterials(ctx, warehouseID)
}

// GetMaterial fetches one material.
func (s *Service) GetMaterial(ctx context.Context, id int64) (Material, error) {
	return s.repo.GetMaterial(ctx, id)
}

// CreateMaterial registers a material with zero opening stock.
func (s *Service) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (Material, error) {
	if _, err := s.repo.GetWarehouse(ctx, req.WarehouseID); err != nil {
		return Material{}, err
	}
	m := Material{
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:        strings.TrimSpace(req.Name),
		UOM:         strings.TrimSpace(req.UOM),
		MinStock:    req.MinStock,
		UnitCost:    req.UnitCost,
		WarehouseID: req.WarehouseID,
	}
	created, err := s.repo.CreateMaterial(ctx, m)
	if err != nil {
		return Material{}, fmt.Errorf("create material: %w", err)
	}
	return created, nil
}

// AdjustStock applies a signed delta to a material's stock quantity. The
// resulting quantity must not be negative.
func (s *Service) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (Material, error) {
	m, err := s.repo.GetMaterial(ctx, id)
	if err != nil {
		return Material{}, err
	}
	next := m.StockQty + req.Delta
	if next < 0 {
		return Material{}, fmt.Errorf("%w: have %.2f, delta %.2f", ErrNegativeStock, m.StockQty, req.Delta)
	}
	return s.repo.SetMaterialStock(ctx, id, next)
}
