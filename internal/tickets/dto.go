package tickets

type CreateTicketRequest struct {
	ClientID    int64          `json:"client_id" validate:"required,gt=0"`
	Subject     string         `json:"subject" validate:"required,max=200"`
	Description string         `json:"description" validate:"required"`
	Priority    TicketPriority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
}

type TicketStatusRequest struct {
	Status TicketStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
}

type AssignTicketRequest struct {
	AssignedTo int64 `json:"assigned_to" validate:"required,gt=0"`
}

type AddCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type ListTicketsRequest struct {
	ClientID   *int64          `json:"client_id,omitempty"`
	Status     *TicketStatus   `json:"status,omitempty"`
	Priority   *TicketPriority `json:"priority,omitempty"`
	AssignedTo *int64          `json:"assigned_to,omitempty"`
	Breached   *bool           `json:"breached,omitempty"`
	Limit      int             `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int             `json:"offset" validate:"gte=0"`
}
