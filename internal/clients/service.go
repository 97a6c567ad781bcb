package clients

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Service handles CRM business logic.
type Service struct {
	repo     Repository
	collator *collate.Collator
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// List returns clients ordered by name using locale-aware collation, so
// accented client names sort next to their unaccented neighbours.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	items, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.collator.CompareString(items[i].Name, items[j].Name) < 0
	})
	return items, total, nil
}

// Create inserts a new CRM record with a generated code.
func (s *Service) Create(ctx context.Context, req CreateClientRequest, createdBy int64) (*Client, error) {
	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate client code: %w", err)
	}
	id, err := s.repo.Create(ctx, Client{
		Code:         code,
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        req.Phone,
		TaxID:        req.TaxID,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      strings.ToUpper(req.Country),
		Notes:        req.Notes,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update modifies an existing record.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(req.Name)
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.TaxID = req.TaxID
	existing.AddressLine1 = req.AddressLine1
	existing.AddressLine2 = req.AddressLine2
	existing.City = req.City
	existing.State = req.State
	existing.PostalCode = req.PostalCode
	existing.Country = strings.ToUpper(req.Country)
	existing.Notes = req.Notes
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// ToggleActive flips the record's active flag.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*Client, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !existing.IsActive); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
