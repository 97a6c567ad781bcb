package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helios-energy/helios-admin/internal/clients"
)

var ErrInvalidStatus = errors.New("quotations: invalid status transition")

type Service struct {
	repo       Repository
	clientRepo clients.Repository
}

func NewService(repo Repository, clientRepo clients.Repository) *Service {
	return &Service{repo: repo, clientRepo: clientRepo}
}

func buildLines(quotationID int64, reqs []CreateQuotationLineReq) (lines []QuotationLine, subtotal, taxAmount, totalAmount float64) {
	for i, lineReq := range reqs {
		discount, tax, lineTotal := CalculateLineTotals(
			lineReq.Quantity,
			lineReq.UnitPrice,
			lineReq.DiscountPercent,
			lineReq.TaxPercent,
		)
		subtotal += (lineReq.Quantity * lineReq.UnitPrice) - discount
		taxAmount += tax
		totalAmount += lineTotal

		line := QuotationLine{
			QuotationID:     quotationID,
			Description:     lineReq.Description,
			Quantity:        lineReq.Quantity,
			UOM:             lineReq.UOM,
			UnitPrice:       lineReq.UnitPrice,
			DiscountPercent: lineReq.DiscountPercent,
			DiscountAmount:  discount,
			TaxPercent:      lineReq.TaxPercent,
			TaxAmount:       tax,
			LineTotal:       lineTotal,
			LineOrder:       lineReq.LineOrder,
		}
		if line.LineOrder == 0 {
			line.LineOrder = i + 1
		}
		lines = append(lines, line)
	}
	return
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, createdBy int64) (*Quotation, error) {
	if req.ValidUntil.Before(req.QuoteDate) {
		return nil, fmt.Errorf("%w: valid_until must be after quote_date", ErrInvalidStatus)
	}
	if _, err := s.clientRepo.Get(ctx, req.ClientID); err != nil {
		return nil, fmt.Errorf("verify client: %w", err)
	}

	docNumber, err := s.repo.GenerateNumber(ctx, req.QuoteDate)
	if err != nil {
		return nil, fmt.Errorf("generate doc number: %w", err)
	}

	lines, subtotal, taxAmount, totalAmount := buildLines(0, req.Lines)
	quotation := Quotation{
		DocNumber:   docNumber,
		ClientID:    req.ClientID,
		QuoteDate:   req.QuoteDate,
		ValidUntil:  req.ValidUntil,
		Status:      QuotationStatusDraft,
		Currency:    req.Currency,
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: totalAmount,
		Notes:       req.Notes,
		CreatedBy:   createdBy,
	}

	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, quotation)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotationID = id
		for _, line := range lines {
			line.QuotationID = quotationID
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("insert quotation line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, quotationID)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Status != QuotationStatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT quotations can be updated", ErrInvalidStatus)
	}

	header := *existing
	if req.QuoteDate != nil {
		header.QuoteDate = *req.QuoteDate
	}
	if req.ValidUntil != nil {
		header.ValidUntil = *req.ValidUntil
	}
	if req.Notes != nil {
		header.Notes = req.Notes
	}
	if header.ValidUntil.Before(header.QuoteDate) {
		return nil, fmt.Errorf("%w: valid_until must be after quote_date", ErrInvalidStatus)
	}

	var lines []QuotationLine
	if req.Lines != nil {
		lines, header.Subtotal, header.TaxAmount, header.TotalAmount = buildLines(id, *req.Lines)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, id, header); err != nil {
			return err
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			for _, line := range lines {
				if _, err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Send marks a draft as delivered to the client and starts its validity
// window.
func (s *Service) Send(ctx context.Context, id int64, userID int64) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Status != QuotationStatusDraft {
		return nil, fmt.Errorf("%w: can only send DRAFT quotations", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, QuotationStatusSent, &userID, nil); err != nil {
		return nil, fmt.Errorf("send quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id int64, approvedBy int64) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Status != QuotationStatusSent {
		return nil, fmt.Errorf("%w: can only approve SENT quotations", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, QuotationStatusApproved, &approvedBy, nil); err != nil {
		return nil, fmt.Errorf("approve quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Reject(ctx context.Context, id int64, rejectedBy int64, reason string) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Status != QuotationStatusSent {
		return nil, fmt.Errorf("%w: can only reject SENT quotations", ErrInvalidStatus)
	}
	if err := s.repo.UpdateStatus(ctx, id, QuotationStatusRejected, &rejectedBy, &reason); err != nil {
		return nil, fmt.Errorf("reject quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ExpireOverdue transitions sent quotations past their validity date to
// EXPIRED. The background scheduler calls this daily.
func (s *Service) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireBefore(ctx, now)
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithClient, int, error) {
	return s.repo.List(ctx, req)
}
