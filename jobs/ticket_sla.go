package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/helios-energy/helios-admin/internal/jobs"
	"github.com/helios-energy/helios-admin/internal/tickets"
)

// Enqueuer submits follow-up tasks from inside a handler.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// NewTicketSLAHandler processes TaskTypeTicketSLAScan tasks. Newly breached
// tickets trigger an escalation email to the support desk.
func NewTicketSLAHandler(svc *tickets.Service, enqueuer Enqueuer, metrics *jobmetrics.Metrics, escalationAddr string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		breached, err := svc.ScanSLA(ctx)
		if err != nil {
			logger.Error("scan ticket sla", slog.Any("error", err))
			return err
		}
		byPriority := map[string]int{}
		for _, ticket := range breached {
			byPriority[string(ticket.Priority)]++
			logger.Warn("ticket sla breached",
				slog.String("code", ticket.Code),
				slog.String("priority", string(ticket.Priority)))
			if enqueuer == nil || escalationAddr == "" {
				continue
			}
			payload := SendEmailPayload{
				To:      escalationAddr,
				Subject: fmt.Sprintf("SLA breached: %s", ticket.Code),
				Body:    fmt.Sprintf("Ticket %s (%s) missed its %s deadline.", ticket.Code, ticket.Subject, ticket.SLADue.Format("2006-01-02 15:04")),
			}
			if _, err := enqueuer.EnqueueSendEmail(ctx, payload); err != nil {
				logger.Error("enqueue escalation mail", slog.Any("error", err))
			}
		}
		for priority, count := range byPriority {
			metrics.AddSLABreaches(priority, count)
		}
		return nil
	}
}
