package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/planpicker/app/identity"
)

// UsersPath is the registration endpoint, relative to the Mini App origin.
const UsersPath = "/api/backend/users"

// Request is the registration payload. Absent optional values encode as null.
type Request struct {
	UserID          int64      `json:"user_id" validate:"required"`
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	LanguageCode    *string    `json:"language_code"`
	IsPremium       *bool      `json:"is_premium"`
	AllowsWriteToPM *bool      `json:"allows_write_to_pm"`
	AuthDate        *time.Time `json:"auth_date"`
	ChatInstance    *string    `json:"chat_instance"`
	ChatType        *string    `json:"chat_type"`
}

// Result is the backend answer.
type Result struct {
	UserRegistered       bool   `json:"user_registered"`
	UserSubscriptionPlan string `json:"user_subscription_plan,omitempty"`
}

// Registrar sends one registration request.
type Registrar interface {
	Register(ctx context.Context, req Request) (Result, error)
}

// NewRequest maps a host snapshot onto the wire payload. d must carry a user.
func NewRequest(d *identity.InitData) Request {
	u := d.User
	req := Request{
		UserID:          u.ID,
		FirstName:       optional(u.FirstName),
		LastName:        optional(u.LastName),
		LanguageCode:    optional(u.LanguageCode),
		IsPremium:       u.IsPremium,
		AllowsWriteToPM: u.AllowsWriteToPM,
		ChatInstance:    optional(d.ChatInstance),
		ChatType:        optional(d.ChatType),
	}
	if !d.AuthDate.IsZero() {
		ts := d.AuthDate.UTC()
		req.AuthDate = &ts
	}
	return req
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Client posts registrations to the backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets baseURL (scheme and host, no trailing path). A nil hc uses
// a client with a 10s timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Register performs the POST and classifies failures into the run error kinds.
func (c *Client) Register(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("registration: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UsersPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, newError(ErrBackendUnreachable, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, newError(ErrBackendUnreachable, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Result{}, newError(ErrBackendRejected, resp.StatusCode, nil)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, newError(ErrMalformedResponse, resp.StatusCode, err)
	}
	return res, nil
}
