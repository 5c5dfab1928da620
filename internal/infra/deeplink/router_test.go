package deeplink

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"questlink/config"
	"questlink/internal/domain/entity"
	"questlink/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntegration struct {
	provider entity.Provider
	matchFn  func(string) bool

	mu      sync.Mutex
	offered []string
}

func (f *fakeIntegration) Provider() entity.Provider { return f.provider }

func (f *fakeIntegration) Status(context.Context) (*entity.ProviderConnection, error) {
	return entity.Disconnected(f.provider), nil
}

func (f *fakeIntegration) StartConnect(context.Context) (*service.ConnectOutcome, error) {
	return &service.ConnectOutcome{Kind: service.OutcomeFailed}, nil
}

func (f *fakeIntegration) Disconnect(context.Context) error { return nil }

func (f *fakeIntegration) MatchCallback(rawURL string) bool {
	f.mu.Lock()
	f.offered = append(f.offered, rawURL)
	f.mu.Unlock()

	if f.matchFn == nil {
		return false
	}

	return f.matchFn(rawURL)
}

func (f *fakeIntegration) CancelConnect() {}

func (f *fakeIntegration) offeredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.offered)
}

type captureNavigator struct {
	visits chan string
}

func newCaptureNavigator() *captureNavigator {
	return &captureNavigator{visits: make(chan string, 4)}
}

func (n *captureNavigator) NavigateToAuthBridge(rawURL string) {
	n.visits <- rawURL
}

func newTestRouter(t *testing.T, integrations []service.SocialIntegration, navigator Navigator) *Router {
	t.Helper()

	cfg := &config.Config{DeepLink: &config.DeepLinkConfig{NavigationDelay: 10 * time.Millisecond}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(cfg, integrations, navigator, logger)
	t.Cleanup(router.Close)

	return router
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Classification
	}{
		{
			name: "profile state marker wins over code param",
			url:  "thaiquestify://callback?code=abc&state=profile_77",
			want: ClassProfileConnect,
		},
		{
			name: "profile path marker wins over code param",
			url:  "https://app.thaiquestify.com/auth/tiktok-profile?code=xyz",
			want: ClassProfileConnect,
		},
		{
			name: "auth session marker",
			url:  "thaiquestify://auth-session/return",
			want: ClassAuthCallback,
		},
		{
			name: "bare code param",
			url:  "thaiquestify://login?code=abc123",
			want: ClassAuthCallback,
		},
		{
			name: "provider name in path",
			url:  "https://app.thaiquestify.com/login/facebook/done",
			want: ClassAuthCallback,
		},
		{
			name: "unrelated link",
			url:  "thaiquestify://quests/42",
			want: ClassIgnored,
		},
		{
			name: "empty url",
			url:  "",
			want: ClassIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
		})
	}
}

func TestRouter_Handle_ProfileConnectMatchesPendingSession(t *testing.T) {
	facebook := &fakeIntegration{provider: entity.ProviderFacebook}
	tiktok := &fakeIntegration{
		provider: entity.ProviderTikTok,
		matchFn:  func(string) bool { return true },
	}
	router := newTestRouter(t, []service.SocialIntegration{facebook, tiktok}, nil)

	var connected []entity.Provider
	router.OnConnectCallback(func(p entity.Provider) { connected = append(connected, p) })

	router.Handle(entity.InboundDeepLink{
		RawURL:     "thaiquestify://callback/tiktok-profile?code=ok",
		ReceivedAt: time.Now(),
	})

	require.Equal(t, []entity.Provider{entity.ProviderTikTok}, connected)
	assert.Equal(t, 1, facebook.offeredCount())
	assert.Equal(t, 1, tiktok.offeredCount())
}

func TestRouter_Handle_ProfileConnectWithoutPendingSessionIsQuiet(t *testing.T) {
	facebook := &fakeIntegration{provider: entity.ProviderFacebook}
	router := newTestRouter(t, []service.SocialIntegration{facebook}, nil)

	fired := false
	router.OnConnectCallback(func(entity.Provider) { fired = true })

	router.Handle(entity.InboundDeepLink{RawURL: "thaiquestify://x-profile", ReceivedAt: time.Now()})

	assert.False(t, fired)
}

func TestRouter_Handle_AuthCallbackStoresURLAndNavigatesAfterDelay(t *testing.T) {
	navigator := newCaptureNavigator()
	router := newTestRouter(t, nil, navigator)

	rawURL := "thaiquestify://auth-session?code=zzz"
	router.Handle(entity.InboundDeepLink{RawURL: rawURL, ReceivedAt: time.Now()})

	got, ok := router.TakeLoginCallback()
	require.True(t, ok)
	assert.Equal(t, rawURL, got)

	// The URL is consumed exactly once.
	_, ok = router.TakeLoginCallback()
	assert.False(t, ok)

	select {
	case visited := <-navigator.visits:
		assert.Equal(t, rawURL, visited)
	case <-time.After(time.Second):
		t.Fatal("navigator was never invoked")
	}
}

func TestRouter_Handle_IgnoredLinkChangesNothing(t *testing.T) {
	navigator := newCaptureNavigator()
	facebook := &fakeIntegration{provider: entity.ProviderFacebook}
	router := newTestRouter(t, []service.SocialIntegration{facebook}, navigator)

	router.Handle(entity.InboundDeepLink{RawURL: "thaiquestify://quests/7", ReceivedAt: time.Now()})

	_, ok := router.TakeLoginCallback()
	assert.False(t, ok)
	assert.Zero(t, facebook.offeredCount())
	assert.Empty(t, navigator.visits)
}

func TestRouter_DrainInitial_EmptyURLIsNoop(t *testing.T) {
	navigator := newCaptureNavigator()
	router := newTestRouter(t, nil, navigator)

	router.DrainInitial("")

	_, ok := router.TakeLoginCallback()
	assert.False(t, ok)
}

func TestRouter_DrainInitial_FeedsLaunchURL(t *testing.T) {
	tiktok := &fakeIntegration{
		provider: entity.ProviderTikTok,
		matchFn:  func(string) bool { return true },
	}
	router := newTestRouter(t, []service.SocialIntegration{tiktok}, nil)

	var connected []entity.Provider
	router.OnConnectCallback(func(p entity.Provider) { connected = append(connected, p) })

	router.DrainInitial("thaiquestify://callback?state=profile_1")

	assert.Equal(t, []entity.Provider{entity.ProviderTikTok}, connected)
}

func TestRouter_Close_StopsPendingNavigation(t *testing.T) {
	navigator := newCaptureNavigator()
	cfg := &config.Config{DeepLink: &config.DeepLinkConfig{NavigationDelay: 50 * time.Millisecond}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(cfg, nil, navigator, logger)

	router.Handle(entity.InboundDeepLink{RawURL: "thaiquestify://auth-session", ReceivedAt: time.Now()})
	_, ok := router.TakeLoginCallback()
	require.True(t, ok)

	router.Close()

	select {
	case visited := <-navigator.visits:
		t.Fatalf("navigation fired after close: %s", visited)
	case <-time.After(150 * time.Millisecond):
	}

	// A closed router drops new auth callbacks entirely.
	router.Handle(entity.InboundDeepLink{RawURL: "thaiquestify://auth-session?code=late", ReceivedAt: time.Now()})
	_, ok = router.TakeLoginCallback()
	assert.False(t, ok)
}
