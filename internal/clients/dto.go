package clients

// CreateClientRequest is the payload for creating a CRM record.
type CreateClientRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	TaxID        *string `json:"tax_id,omitempty" validate:"omitempty,max=40"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country      string  `json:"country" validate:"required,len=2"`
	Notes        *string `json:"notes,omitempty"`
}

// UpdateClientRequest is the payload for updating a CRM record.
type UpdateClientRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	TaxID        *string `json:"tax_id,omitempty" validate:"omitempty,max=40"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country      string  `json:"country" validate:"required,len=2"`
	Notes        *string `json:"notes,omitempty"`
}

// ListClientsRequest filters the client listing.
type ListClientsRequest struct {
	Search   string `json:"search" validate:"max=200"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int    `json:"offset" validate:"gte=0"`
}
