package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/assetline-io/assetline-backend/pkg/config"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

var errBaseURLRequired = errors.New("identity provider base URL is required")

// Client talks to the external identity provider that owns account
// credentials. The backend never stores passwords itself.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the identity provider client.
func NewClient(cfg config.IdentityConfig, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// CreateAccountRequest is the payload sent when provisioning an account.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"displayName,omitempty"`
}

// Account is the provider's view of a provisioned account.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateAccount provisions an account with the provider and returns the
// provider-assigned ID.
func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity client not configured")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal create account request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/accounts", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build create account request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute create account request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists with this email")
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "create account request failed")
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode create account response")
	}
	if account.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "identity provider returned empty account ID")
	}

	return &account, nil
}

// DeleteAccount removes the provider-side account. A missing account is not
// an error; local cleanup must still proceed.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "identity client not configured")
	}
	trimmed := strings.TrimSpace(accountID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account ID is required")
	}

	endpoint := fmt.Sprintf("%s/v1/accounts/%s", c.baseURL, url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build delete account request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute delete account request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "delete account request failed")
	}
}
