package tickets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/helios-energy/helios-admin/internal/clients"
)

type Service struct {
	repo       Repository
	clientRepo clients.Repository
	now        func() time.Time
}

func NewService(repo Repository, clientRepo clients.Repository) *Service {
	return &Service{repo: repo, clientRepo: clientRepo, now: time.Now}
}

// Create opens a new ticket. The SLA deadline is derived from priority.
func (s *Service) Create(ctx context.Context, req CreateTicketRequest, createdBy int64) (Ticket, error) {
	if _, err := s.clientRepo.Get(ctx, req.ClientID); err != nil {
		return Ticket{}, fmt.Errorf("verify client: %w", err)
	}
	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return Ticket{}, fmt.Errorf("generate ticket code: %w", err)
	}
	opened := s.now()
	t := Ticket{
		Code:        code,
		ClientID:    req.ClientID,
		Subject:     strings.TrimSpace(req.Subject),
		Description: req.Description,
		Status:      TicketStatusOpen,
		Priority:    req.Priority,
		SLADue:      SLADeadline(req.Priority, opened),
		CreatedBy:   createdBy,
	}
	return s.repo.Create(ctx, t)
}

// ChangeStatus moves a ticket through its lifecycle, stamping resolution and
// close times.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status TicketStatus) (Ticket, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(existing.Status, status) {
		return Ticket{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, existing.Status, status)
	}
	var resolvedAt, closedAt *time.Time
	now := s.now()
	switch status {
	case TicketStatusResolved:
		resolvedAt = &now
	case TicketStatusClosed:
		closedAt = &now
	}
	return s.repo.UpdateStatus(ctx, id, status, resolvedAt, closedAt)
}

// Assign routes a ticket to a support agent. Assigning an open ticket moves
// it to IN_PROGRESS.
func (s *Service) Assign(ctx context.Context, id int64, userID int64) (Ticket, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if existing.Status == TicketStatusClosed {
		return Ticket{}, fmt.Errorf("%w: cannot assign a closed ticket", ErrInvalidStatus)
	}
	t, err := s.repo.Assign(ctx, id, userID)
	if err != nil {
		return Ticket{}, err
	}
	if t.Status == TicketStatusOpen {
		return s.repo.UpdateStatus(ctx, id, TicketStatusInProgress, nil, nil)
	}
	return t, nil
}

// AddComment appends a comment to the ticket timeline.
func (s *Service) AddComment(ctx context.Context, ticketID, authorID int64, body string) (TicketComment, error) {
	if _, err := s.repo.Get(ctx, ticketID); err != nil {
		return TicketComment{}, err
	}
	return s.repo.InsertComment(ctx, TicketComment{
		TicketID: ticketID,
		AuthorID: authorID,
		Body:     strings.TrimSpace(body),
	})
}

func (s *Service) Comments(ctx context.Context, ticketID int64) ([]TicketComment, error) {
	if _, err := s.repo.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, ticketID)
}

// ScanSLA flags tickets past their deadline. The background scheduler calls
// this periodically; the returned tickets feed escalation mail.
func (s *Service) ScanSLA(ctx context.Context) ([]Ticket, error) {
	return s.repo.MarkBreached(ctx, s.now())
}

func (s *Service) Get(ctx context.Context, id int64) (*Ticket, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListTicketsRequest) ([]TicketWithNames, int, error) {
	return s.repo.List(ctx, req)
}
