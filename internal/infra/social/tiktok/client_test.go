package tiktok

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"questlink/config"
	"questlink/internal/domain/entity"
	domainerrors "questlink/internal/domain/errors"
	"questlink/internal/domain/service"
	"questlink/internal/infra/api"
	"questlink/internal/infra/social"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedirectURI = "https://app.thaiquestify.com/callback/tiktok-profile"

type stubCredentials struct{}

func (stubCredentials) Load() (entity.Credential, entity.UserProfile, bool) {
	return entity.Credential{Token: "tok"}, entity.UserProfile{}, true
}

func (stubCredentials) Save(context.Context, entity.Credential, entity.UserProfile) error {
	return nil
}

func (stubCredentials) Clear(context.Context) error { return nil }

func newTestClient(t *testing.T, backendHandler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(backendHandler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Backend.BaseURL = server.URL
	cfg.Backend.RequestTimeout = 5 * time.Second
	cfg.TikTok = &config.TikTokConfig{
		ClientKey:   "client-key",
		RedirectURI: testRedirectURI,
		Scopes:      "user.info.basic",
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := social.NewBackend(api.NewClient(cfg, stubCredentials{}, logger), logger)

	return NewClient(cfg, backend, logger)
}

func notFoundBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
}

func TestClient_StartConnect_UsesBackendAuthorizeURL(t *testing.T) {
	backendHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "url": "https://www.tiktok.com/v2/auth/authorize/?from=backend"}`))
	})
	client := newTestClient(t, backendHandler)

	outcome, err := client.StartConnect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAwaitingCallback, outcome.Kind)
	assert.Equal(t, "https://www.tiktok.com/v2/auth/authorize/?from=backend", outcome.AuthorizeURL)
	require.NotNil(t, outcome.Session)
	assert.Equal(t, entity.ProviderTikTok, outcome.Session.Provider)
	assert.Equal(t, testRedirectURI, outcome.Session.CallbackPrefix)
}

func TestClient_StartConnect_FallsBackToLocalAuthorizeURL(t *testing.T) {
	client := newTestClient(t, notFoundBackend())

	outcome, err := client.StartConnect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAwaitingCallback, outcome.Kind)
	require.NotNil(t, outcome.Session)

	// The locally built URL carries the linking-flow state marker so the
	// callback is routed to the profile flow, not the login bridge.
	assert.Contains(t, outcome.AuthorizeURL, Endpoint.AuthURL)
	assert.Contains(t, outcome.AuthorizeURL, "state=profile_"+outcome.Session.ID.String())
	assert.Contains(t, outcome.AuthorizeURL, "client_id=client-key")
}

func TestClient_StartConnect_SecondStartIsRejected(t *testing.T) {
	client := newTestClient(t, notFoundBackend())

	_, err := client.StartConnect(context.Background())
	require.NoError(t, err)

	_, err = client.StartConnect(context.Background())
	require.ErrorIs(t, err, domainerrors.ErrConnectPending)
}

func TestClient_StartConnect_ServerErrorIsFailedOutcome(t *testing.T) {
	backendHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newTestClient(t, backendHandler)

	outcome, err := client.StartConnect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFailed, outcome.Kind)
	assert.NotEmpty(t, outcome.Reason)

	// A failed start leaves no pending session behind.
	assert.False(t, client.MatchCallback(testRedirectURI+"?code=x"))
}

func TestClient_MatchCallback_ConsumesPendingSession(t *testing.T) {
	client := newTestClient(t, notFoundBackend())

	_, err := client.StartConnect(context.Background())
	require.NoError(t, err)

	callback := testRedirectURI + "?code=abc&state=profile_x"
	assert.True(t, client.MatchCallback(callback))

	// Consumed: the same URL no longer matches anything.
	assert.False(t, client.MatchCallback(callback))
}

func TestClient_MatchCallback_ForeignURLDoesNotMatch(t *testing.T) {
	client := newTestClient(t, notFoundBackend())

	_, err := client.StartConnect(context.Background())
	require.NoError(t, err)

	assert.False(t, client.MatchCallback("https://elsewhere.example.com/callback?code=abc"))

	// The pending session survives a non-matching URL.
	assert.True(t, client.MatchCallback(testRedirectURI+"?code=abc"))
}

func TestClient_CancelConnect_AllowsRestart(t *testing.T) {
	client := newTestClient(t, notFoundBackend())

	_, err := client.StartConnect(context.Background())
	require.NoError(t, err)

	client.CancelConnect()

	outcome, err := client.StartConnect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAwaitingCallback, outcome.Kind)
}
