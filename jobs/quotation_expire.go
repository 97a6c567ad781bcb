package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/helios-energy/helios-admin/internal/quotations"
)

// NewQuotationExpireHandler processes TaskTypeQuotationExpire tasks. Sent
// quotations past their validity date move to EXPIRED.
func NewQuotationExpireHandler(svc *quotations.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		n, err := svc.ExpireOverdue(ctx, time.Now())
		if err != nil {
			logger.Error("expire quotations", slog.Any("error", err))
			return err
		}
		if n > 0 {
			logger.Info("expired quotations", slog.Int64("count", n))
		}
		return nil
	}
}
