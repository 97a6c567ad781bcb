package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helios-energy/helios-admin/internal/shared"
	"github.com/helios-energy/helios-admin/pkg/apiclient"
	"github.com/helios-energy/helios-admin/pkg/optimistic"
)

// Row types mirror the API's JSON payloads for the collections the console
// manages. They carry only what the tables render.
type (
	ClientRow struct {
		ID     int64  `json:"id"`
		Code   string `json:"code"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		City   string `json:"city"`
		Active bool   `json:"is_active"`
	}

	UserRow struct {
		ID     int64  `json:"id"`
		Email  string `json:"email"`
		Name   string `json:"name"`
		Role   string `json:"role_name"`
		Active bool   `json:"is_active"`
	}

	RoleRow struct {
		ID          int64  `json:"id"`
		Slug        string `json:"slug"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	WarehouseRow struct {
		ID       int64  `json:"id"`
		Code     string `json:"code"`
		Name     string `json:"name"`
		Location string `json:"location"`
		Active   bool   `json:"is_active"`
	}

	ToolRow struct {
		ID          int64  `json:"id"`
		Code        string `json:"code"`
		Name        string `json:"name"`
		Status      string `json:"status"`
		WarehouseID int64  `json:"warehouse_id"`
	}

	MaterialRow struct {
		ID       int64   `json:"id"`
		Code     string  `json:"code"`
		Name     string  `json:"name"`
		UOM      string  `json:"uom"`
		StockQty float64 `json:"stock_qty"`
		MinStock float64 `json:"min_stock"`
		Active   bool    `json:"is_active"`
	}

	QuotationRow struct {
		ID        int64   `json:"id"`
		DocNumber string  `json:"doc_number"`
		ClientID  int64   `json:"client_id"`
		Status    string  `json:"status"`
		Total     float64 `json:"total_amount"`
	}

	TicketRow struct {
		ID       int64  `json:"id"`
		Code     string `json:"code"`
		Subject  string `json:"subject"`
		Priority string `json:"priority"`
		Status   string `json:"status"`
	}
)

func idOnly[T any](get func(T) int64) optimistic.Config[T] {
	return optimistic.Config[T]{ID: get}
}

// Console aggregates the session, the access gate and one optimistic
// resource per collection, all sharing a single API client authenticated by
// the session token.
type Console struct {
	API     *apiclient.Client
	Session *Session
	Gate    *Gate

	Clients    *Resource[ClientRow]
	Users      *Resource[UserRow]
	Roles      *Resource[RoleRow]
	Warehouses *Resource[WarehouseRow]
	Tools      *Resource[ToolRow]
	Materials  *Resource[MaterialRow]
	Quotations *Resource[QuotationRow]
	Tickets    *Resource[TicketRow]
}

// New wires the console against the API at baseURL, with credentials held in
// store. The session is initialized from persisted state immediately.
func New(baseURL string, store CredentialStore, logger *slog.Logger) *Console {
	c := &Console{}
	c.API = apiclient.New(baseURL, func() string {
		if c.Session == nil {
			return ""
		}
		return c.Session.Token()
	})
	c.Session = NewSession(store, c.fetchPrincipal, logger)
	c.Session.Init()
	c.Gate = NewGate(c.Session)

	c.Clients = NewResource(c.API, "/clients", optimistic.Config[ClientRow]{
		ID: func(r ClientRow) int64 { return r.ID },
		ToggleActive: func(r ClientRow) ClientRow {
			r.Active = !r.Active
			return r
		},
	})
	c.Users = NewResource(c.API, "/users", optimistic.Config[UserRow]{
		ID: func(r UserRow) int64 { return r.ID },
		ToggleActive: func(r UserRow) UserRow {
			r.Active = !r.Active
			return r
		},
	})
	c.Roles = NewResource(c.API, "/roles", idOnly(func(r RoleRow) int64 { return r.ID }))
	c.Warehouses = NewResource(c.API, "/inventory/warehouses", idOnly(func(r WarehouseRow) int64 { return r.ID }))
	c.Tools = NewResource(c.API, "/inventory/tools", idOnly(func(r ToolRow) int64 { return r.ID }))
	c.Materials = NewResource(c.API, "/inventory/materials", idOnly(func(r MaterialRow) int64 { return r.ID }))
	c.Quotations = NewResource(c.API, "/quotations", idOnly(func(r QuotationRow) int64 { return r.ID }))
	c.Tickets = NewResource(c.API, "/tickets", idOnly(func(r TicketRow) int64 { return r.ID }))
	return c
}

func (c *Console) fetchPrincipal(ctx context.Context) (*shared.Principal, error) {
	env, err := c.API.Get(ctx, "/auth/me")
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("console: fetch principal: %s", env.Message)
	}
	var principal shared.Principal
	if err := env.DecodeData(&principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

type loginPayload struct {
	User   *shared.Principal `json:"user"`
	Tokens struct {
		AccessToken  string    `json:"access_token"`
		RefreshToken string    `json:"refresh_token"`
		ExpiresAt    time.Time `json:"expires_at"`
	} `json:"tokens"`
}

// Login authenticates against the API and installs the resulting session.
// A business failure surfaces the server message.
func (c *Console) Login(ctx context.Context, email, password string) error {
	env, err := c.API.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("console: login: %s", env.Message)
	}
	var payload loginPayload
	if err := env.DecodeData(&payload); err != nil {
		return err
	}
	return c.Session.Login(payload.Tokens.AccessToken, payload.User)
}

// Logout revokes the session server-side on a best-effort basis and always
// clears local state.
func (c *Console) Logout(ctx context.Context) {
	if c.Session.Token() != "" {
		_, _ = c.API.Post(ctx, "/auth/logout", nil)
	}
	c.Session.Logout()
}

// Menu returns the navigation visible to the current principal.
func (c *Console) Menu() []MenuSection {
	return FilterMenu(c.Session.Principal(), DefaultMenu())
}
