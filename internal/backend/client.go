package backend

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

	"go.uber.org/zap"
)

// ErrUnavailable is returned when the backend cannot be reached at all.
var ErrUnavailable = errors.New("could not reach the backend")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// Config holds the backend connection details.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client performs JSON calls against the shop's REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new backend client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Caller identifies who a backend call is made on behalf of.
type Caller struct {
	Token    string
	Subject  string // the user's email
	UserID   int64
	FullName string
	Role     string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == "ADMIN"
}

type callerKey struct{}

// WithCaller returns a context that carries the caller.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by WithCaller.
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}

// WithToken returns a context whose caller carries the given bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	caller, _ := CallerFrom(ctx)
	caller.Token = token
	return WithCaller(ctx, caller)
}

// Do sends a request to path (relative to the base URL). body, when not nil,
// is sent as JSON; a 2xx JSON answer is decoded into out when out is not nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.do(ctx, method, endpoint, body, out)
}

// GetAbsolute fetches a JSON document from an absolute URL, outside the backend.
func (c *Client) GetAbsolute(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller, ok := CallerFrom(ctx); ok && caller.Token != "" {
		req.Header.Set("Authorization", "Bearer "+caller.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody, isJSON)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// newAPIError prefers the backend's own "error" or "message" field and
// falls back to a message chosen by status code.
func newAPIError(status int, body []byte, isJSON bool) *APIError {
	if isJSON {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Error != "" {
				return &APIError{Status: status, Message: payload.Error}
			}
			if payload.Message != "" {
				return &APIError{Status: status, Message: payload.Message}
			}
		}
		return &APIError{Status: status, Message: "request failed"}
	}

	switch status {
	case http.StatusNotFound:
		return &APIError{Status: status, Message: "service not found, check that the backend is running"}
	case http.StatusInternalServerError:
		return &APIError{Status: status, Message: "server error, please try again"}
	case http.StatusUnauthorized:
		return &APIError{Status: status, Message: "invalid credentials"}
	case http.StatusForbidden:
		return &APIError{Status: status, Message: "access denied"}
	default:
		return &APIError{Status: status, Message: fmt.Sprintf("error %d: the request could not be processed", status)}
	}
}
