// Package tiktok implements the redirect-style TikTok integration: the
// backend (or, failing that, this client) produces an authorization URL to
// open externally, and the flow resolves later through a deep-link callback.
package tiktok

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"questlink/config"
	"questlink/internal/domain/entity"
	domainerrors "questlink/internal/domain/errors"
	"questlink/internal/domain/service"
	"questlink/internal/infra/social"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Endpoint is TikTok's OAuth 2.0 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.tiktok.com/v2/auth/authorize/",
	TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
}

// Client implements service.SocialIntegration for TikTok.
type Client struct {
	backend     *social.Backend
	oauthCfg    *oauth2.Config
	redirectURI string
	logger      *slog.Logger

	mu      sync.Mutex
	pending *entity.PendingOAuthSession
}

// NewClient is the constructor for Client.
func NewClient(cfg *config.Config, backend *social.Backend, logger *slog.Logger) *Client {
	client := &Client{
		backend: backend,
		logger:  logger,
	}

	if cfg.TikTok != nil {
		client.redirectURI = cfg.TikTok.RedirectURI
		client.oauthCfg = &oauth2.Config{
			ClientID:    cfg.TikTok.ClientKey,
			RedirectURL: cfg.TikTok.RedirectURI,
			Scopes:      []string{cfg.TikTok.Scopes},
			Endpoint:    Endpoint,
		}
	}

	return client
}

// Provider returns which platform this client links.
func (c *Client) Provider() entity.Provider {
	return entity.ProviderTikTok
}

// Status fetches the current linkage from the backend.
func (c *Client) Status(ctx context.Context) (*entity.ProviderConnection, error) {
	return c.backend.Status(ctx, entity.ProviderTikTok)
}

// StartConnect asks the backend for an authorization URL and records the
// pending session the router will later match. A second start while one is
// pending is rejected rather than replaced, so a double-tap cannot orphan an
// in-flight flow.
func (c *Client) StartConnect(ctx context.Context) (*service.ConnectOutcome, error) {
	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()

		return nil, domainerrors.ErrConnectPending
	}
	c.mu.Unlock()

	session := &entity.PendingOAuthSession{
		ID:             uuid.New(),
		Provider:       entity.ProviderTikTok,
		CallbackPrefix: c.redirectURI,
		StartedAt:      time.Now(),
	}

	authorizeURL, err := c.backend.StartConnect(ctx, entity.ProviderTikTok)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrIntegrationUnavailable) || c.oauthCfg == nil {
			c.logger.Warn("TikTok start failed", slog.Any("error", err))

			return &service.ConnectOutcome{
				Kind:   service.OutcomeFailed,
				Reason: domainerrors.ErrConnectFailed.Message(),
			}, nil
		}

		// Backend has no start endpoint: build the authorize URL locally.
		// The "profile_" state marker is what routes the callback into the
		// profile-linking flow instead of the generic auth bridge.
		authorizeURL = c.oauthCfg.AuthCodeURL("profile_" + session.ID.String())
	}

	c.mu.Lock()
	c.pending = session
	c.mu.Unlock()

	return &service.ConnectOutcome{
		Kind:         service.OutcomeAwaitingCallback,
		Session:      session,
		AuthorizeURL: authorizeURL,
	}, nil
}

// Disconnect unlinks the account. A backend 404 counts as already disconnected.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.backend.Disconnect(ctx, entity.ProviderTikTok)
}

// MatchCallback consumes the pending session when the inbound URL carries
// its callback prefix.
func (c *Client) MatchCallback(rawURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending.Matches(rawURL) {
		return false
	}
	c.pending = nil

	return true
}

// CancelConnect discards the pending session when the user backs out.
func (c *Client) CancelConnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = nil
}
