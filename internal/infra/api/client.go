// Package api is the single configured request pipeline to the remote
// backend. Every outbound call attaches the stored bearer token and every
// failure is classified into the NetworkError/HTTPError/DecodeError taxonomy
// before it reaches the application layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"questlink/config"
	"questlink/internal/domain/repository"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Client wraps one http.Client with bearer injection, a fixed request
// timeout and response validation. No retries, no backoff.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials repository.CredentialRepository
	validate    *validator.Validate
	logger      *slog.Logger

	// onUnauthorized runs once per 401 response. The session usecase installs
	// a hook that clears the credential store, centralizing the logout policy
	// at the client boundary.
	onUnauthorized func()
}

// NewClient is the constructor for Client.
func NewClient(cfg *config.Config, credentials repository.CredentialRepository, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.Backend.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Backend.RequestTimeout},
		credentials: credentials,
		validate:    validator.New(),
		logger:      logger,
	}
}

// SetOnUnauthorized installs the hook invoked when the backend answers 401.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Get performs an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post performs an authenticated POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Do executes one request. The bearer token is read synchronously from the
// store's cache; when absent the request proceeds unauthenticated and the
// server decides whether the endpoint requires auth.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred, _, ok := c.credentials.Load(); ok {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed before a response arrived",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err))

		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{Status: resp.StatusCode, Body: respBody}
		if httpErr.Unauthorized() && c.onUnauthorized != nil {
			c.onUnauthorized()
		}

		return httpErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Err: err}
	}

	if err := c.validateResponse(out); err != nil {
		return &DecodeError{Err: err}
	}

	return nil
}

// validateResponse rejects loosely-shaped responses at the boundary instead
// of propagating them inward.
func (c *Client) validateResponse(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	return c.validate.Struct(v.Interface())
}
