// Package apiclient is the HTTP client for the admin API. Every call is
// normalized into the platform response envelope so callers never branch on
// raw response shapes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized indicates the access token was missing or rejected.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrForbidden indicates the principal lacks the required permission.
	ErrForbidden = errors.New("apiclient: forbidden")
	// ErrTransport indicates the server was unreachable or replied with an
	// unparsable body.
	ErrTransport = errors.New("apiclient: connection error")
)

// Envelope is the normalized response shape returned by every endpoint.
type Envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// TokenSource supplies the current bearer token, empty when anonymous.
type TokenSource func() string

// Client talks to the admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// New constructs a client for the given API base URL. tokenSource may be nil
// for anonymous use.
func New(baseURL string, tokenSource TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		token:      tokenSource,
	}
}

// Request performs one API call and decodes the response envelope. A non-nil
// error is returned for transport and authorization failures; business
// failures come back as an envelope with Success=false and a nil error.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (*Envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	}

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}
	return &envelope, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Envelope, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Envelope, error) {
	return c.Request(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Envelope, error) {
	return c.Request(ctx, http.MethodPut, path, body)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Envelope, error) {
	return c.Request(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Request(ctx, http.MethodDelete, path, nil)
}

// DecodeData unmarshals the envelope payload into out.
func (e *Envelope) DecodeData(out interface{}) error {
	if len(e.Data) == 0 {
		return errors.New("apiclient: envelope has no data")
	}
	return json.Unmarshal(e.Data, out)
}

// DecodeList unmarshals a collection payload into out. List endpoints reply
// with either a bare array or a paginated `{items, pagination}` object; both
// shapes are normalized here so callers never inspect the raw payload.
func (e *Envelope) DecodeList(out interface{}) error {
	if len(e.Data) == 0 {
		return errors.New("apiclient: envelope has no data")
	}
	data := bytes.TrimSpace(e.Data)
	if len(data) > 0 && data[0] == '{' {
		var page struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		if page.Items == nil {
			return nil
		}
		return json.Unmarshal(page.Items, out)
	}
	return json.Unmarshal(data, out)
}
