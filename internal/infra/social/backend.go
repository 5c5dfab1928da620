// Package social implements the per-provider integration clients against the
// backend's /integrations endpoints.
package social

import (
	"context"
	"log/slog"
	"time"

	"questlink/internal/domain/entity"
	domainerrors "questlink/internal/domain/errors"
	"questlink/internal/infra/api"

	"github.com/pkg/errors"
)

// statusResponse is the backend's connection status DTO. Optional fields are
// absent when the account is not linked.
type statusResponse struct {
	Success       bool       `json:"success"`
	Connected     bool       `json:"connected"`
	Username      string     `json:"username"`
	ProfileURL    string     `json:"profileUrl"`
	FollowerCount int        `json:"followerCount"`
	LastSynced    *time.Time `json:"lastSynced"`
}

type startResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Backend wraps the integration endpoints shared by every provider.
type Backend struct {
	api    *api.Client
	logger *slog.Logger
}

// NewBackend is the constructor for Backend.
func NewBackend(client *api.Client, logger *slog.Logger) *Backend {
	return &Backend{api: client, logger: logger}
}

// Status fetches the current linkage. Failure policy is fail-safe: anything
// but a 404 collapses to a zero disconnected connection so a status refresh
// can never surface an error to the account screens. A 404 is the "endpoint
// not implemented" sentinel.
func (b *Backend) Status(ctx context.Context, provider entity.Provider) (*entity.ProviderConnection, error) {
	var resp statusResponse
	if err := b.api.Get(ctx, "/integrations/"+string(provider)+"/status", &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.NotFound() {
			return nil, errors.Wrapf(domainerrors.ErrIntegrationUnavailable, "%s status", provider)
		}

		b.logger.Warn("Status fetch failed, assuming disconnected",
			slog.String("provider", string(provider)),
			slog.Any("error", err))

		return entity.Disconnected(provider), nil
	}

	if !resp.Success || !resp.Connected {
		return entity.Disconnected(provider), nil
	}

	return &entity.ProviderConnection{
		Provider:         provider,
		Connected:        true,
		ExternalUsername: resp.Username,
		ProfileURL:       resp.ProfileURL,
		FollowerCount:    resp.FollowerCount,
		LastSyncedAt:     resp.LastSynced,
	}, nil
}

// StartConnect asks the backend for an authorization URL to open externally.
// A 404 is passed through as ErrIntegrationUnavailable so redirect providers
// can fall back to building the URL locally.
func (b *Backend) StartConnect(ctx context.Context, provider entity.Provider) (string, error) {
	var resp startResponse
	if err := b.api.Post(ctx, "/integrations/"+string(provider)+"/start", nil, &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.NotFound() {
			return "", errors.Wrapf(domainerrors.ErrIntegrationUnavailable, "%s start", provider)
		}

		return "", errors.Wrapf(err, "start %s connect", provider)
	}

	if !resp.Success || resp.URL == "" {
		if resp.Message != "" {
			return "", errors.Errorf("start %s connect: %s", provider, resp.Message)
		}

		return "", errors.Errorf("start %s connect: backend refused", provider)
	}

	return resp.URL, nil
}

// Connect reports an in-process login's provider token to the backend.
// A missing endpoint is benign: the login itself already succeeded.
func (b *Backend) Connect(ctx context.Context, provider entity.Provider, accessToken string) error {
	body := map[string]string{"accessToken": accessToken}

	var resp ackResponse
	if err := b.api.Post(ctx, "/integrations/"+string(provider)+"/connect", body, &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.NotFound() {
			b.logger.Info("Connect endpoint not implemented, skipping report",
				slog.String("provider", string(provider)))

			return nil
		}

		return errors.Wrapf(err, "report %s connect", provider)
	}

	if !resp.Success {
		if resp.Message != "" {
			return errors.Errorf("report %s connect: %s", provider, resp.Message)
		}

		return errors.Errorf("report %s connect: backend refused", provider)
	}

	return nil
}

// Disconnect unlinks the account. A 404 means the backend has no disconnect
// support yet, which is not an error to the user: the result is the same.
func (b *Backend) Disconnect(ctx context.Context, provider entity.Provider) error {
	var resp ackResponse
	if err := b.api.Post(ctx, "/integrations/"+string(provider)+"/disconnect", nil, &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.NotFound() {
			b.logger.Info("Disconnect endpoint not implemented, treating as disconnected",
				slog.String("provider", string(provider)))

			return nil
		}

		return errors.Wrapf(err, "disconnect %s", provider)
	}

	if !resp.Success {
		if resp.Message != "" {
			return errors.Errorf("disconnect %s: %s", provider, resp.Message)
		}

		return errors.Errorf("disconnect %s: backend refused", provider)
	}

	return nil
}
