// Package facebook implements the SDK-style Facebook integration: login is
// an in-process token exchange, so a connect flow completes synchronously
// without a pending session or deep-link callback.
package facebook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"questlink/config"
	"questlink/internal/domain/entity"
	domainerrors "questlink/internal/domain/errors"
	"questlink/internal/domain/service"
	"questlink/internal/infra/social"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	fboauth "golang.org/x/oauth2/facebook"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// Client implements service.SocialIntegration and service.RelationshipChecker.
type Client struct {
	backend      *social.Backend
	tokens       oauth2.TokenSource
	graphBaseURL string
	httpClient   *http.Client
	targetPageID string
	logger       *slog.Logger
}

// NewClient is the constructor for Client. The token source stands in for
// the native SDK login: calling it performs the in-process exchange.
func NewClient(cfg *config.Config, backend *social.Backend, logger *slog.Logger) *Client {
	graphBase := defaultGraphBaseURL
	var tokens oauth2.TokenSource
	var targetPage string

	if cfg.Facebook != nil {
		if cfg.Facebook.GraphBaseURL != "" {
			graphBase = cfg.Facebook.GraphBaseURL
		}
		targetPage = cfg.Facebook.TargetPageID

		cc := &clientcredentials.Config{
			ClientID:     cfg.Facebook.AppID,
			ClientSecret: cfg.Facebook.AppSecret,
			TokenURL:     fboauth.Endpoint.TokenURL,
		}
		tokens = cc.TokenSource(context.Background())
	}

	return &Client{
		backend:      backend,
		tokens:       tokens,
		graphBaseURL: graphBase,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		targetPageID: targetPage,
		logger:       logger,
	}
}

// WithTokenSource replaces the login token source; used by tests and by
// callers that already hold a user token.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	c.tokens = ts

	return c
}

// Provider returns which platform this client links.
func (c *Client) Provider() entity.Provider {
	return entity.ProviderFacebook
}

// Status fetches the current linkage from the backend.
func (c *Client) Status(ctx context.Context) (*entity.ProviderConnection, error) {
	return c.backend.Status(ctx, entity.ProviderFacebook)
}

// StartConnect performs the in-process login and reports the token to the
// backend. The outcome is synchronous from the caller's point of view.
func (c *Client) StartConnect(ctx context.Context) (*service.ConnectOutcome, error) {
	if c.tokens == nil {
		return &service.ConnectOutcome{
			Kind:   service.OutcomeFailed,
			Reason: domainerrors.ErrConnectFailed.Message(),
		}, nil
	}

	tok, err := c.tokens.Token()
	if err != nil {
		c.logger.Warn("Facebook login failed", slog.Any("error", err))

		return &service.ConnectOutcome{
			Kind:   service.OutcomeFailed,
			Reason: domainerrors.ErrOAuthFailed.Message(),
		}, nil
	}

	if err := c.backend.Connect(ctx, entity.ProviderFacebook, tok.AccessToken); err != nil {
		c.logger.Warn("Reporting Facebook token to backend failed", slog.Any("error", err))

		return &service.ConnectOutcome{
			Kind:   service.OutcomeFailed,
			Reason: domainerrors.ErrConnectFailed.Message(),
		}, nil
	}

	return &service.ConnectOutcome{
		Kind:        service.OutcomeConnected,
		AccessToken: tok.AccessToken,
	}, nil
}

// Disconnect unlinks the account. A backend 404 counts as already disconnected.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.backend.Disconnect(ctx, entity.ProviderFacebook)
}

// MatchCallback always returns false: the Facebook flow has no redirect leg.
func (c *Client) MatchCallback(string) bool {
	return false
}

// CancelConnect is a no-op: there is never a pending session.
func (c *Client) CancelConnect() {}

// CheckPageRelationship reports whether the authenticated account likes the
// target page. The target's existence is resolved first; any resolution or
// edge failure short-circuits to "relationship absent" — a provider outage
// must never block the quest flow.
func (c *Client) CheckPageRelationship(ctx context.Context, accessToken, targetID string) bool {
	if targetID == "" {
		targetID = c.targetPageID
	}
	if accessToken == "" || targetID == "" {
		return false
	}

	if !c.resolvePage(ctx, accessToken, targetID) {
		return false
	}

	return c.queryLikesEdge(ctx, accessToken, targetID)
}

// resolvePage confirms the target page exists and is visible to this token.
func (c *Client) resolvePage(ctx context.Context, accessToken, targetID string) bool {
	var page struct {
		ID string `json:"id"`
	}
	if !c.graphGet(ctx, "/"+targetID, url.Values{"fields": {"id"}}, accessToken, &page) {
		return false
	}

	return page.ID != ""
}

// queryLikesEdge checks the user->page likes edge. A non-empty data array
// means the relationship exists.
func (c *Client) queryLikesEdge(ctx context.Context, accessToken, targetID string) bool {
	var edge struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if !c.graphGet(ctx, "/me/likes/"+targetID, nil, accessToken, &edge) {
		return false
	}

	return len(edge.Data) > 0
}

// graphGet performs one Graph API call. Every failure mode is collapsed to
// false here so callers never see a provider error.
func (c *Client) graphGet(ctx context.Context, path string, params url.Values, accessToken string, out any) bool {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphBaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Graph API unreachable", slog.String("path", path), slog.Any("error", err))

		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Graph API returned an error status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))

		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false
	}

	return true
}
