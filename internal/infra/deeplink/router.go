// Package deeplink routes inbound URLs into the running app. One router is
// constructed at process start, owned by the application root and passed down
// explicitly; there is no package-level listener.
package deeplink

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"questlink/config"
	"questlink/internal/domain/entity"
	"questlink/internal/domain/service"
)

// Classification is the router's verdict for one inbound URL.
type Classification string

const (
	// ClassIgnored means the URL carries no recognized marker; no state changes.
	ClassIgnored Classification = "ignored"
	// ClassProfileConnect means the URL is a provider-account-linking callback.
	ClassProfileConnect Classification = "profile_connect"
	// ClassAuthCallback means the URL is a generic login/auth callback.
	ClassAuthCallback Classification = "auth_callback"
)

// Markers recognized in inbound URLs.
const (
	// profileStateMarker is the state-value prefix a linking flow stamps on its
	// authorize URL, e.g. state=profile_77.
	profileStateMarker = "profile_"
	// profilePathMarker appears in provider linking callbacks, e.g. /auth/facebook-profile.
	profilePathMarker = "-profile"
	// authSessionMarker appears in the hosted auth session's redirect URL.
	authSessionMarker = "auth-session"
	// codeParam is the standard OAuth authorization-code parameter.
	codeParam = "code"
)

// providerMarkers are provider-name substrings that tag a social login callback.
var providerMarkers = []string{"facebook", "tiktok"}

// Navigator is the view-layer hook the router calls to open the bridge
// screen that hands a login callback back to the auth flow.
type Navigator interface {
	NavigateToAuthBridge(rawURL string)
}

// Router classifies every inbound URL and dispatches it to the pending OAuth
// session, the login flow, or nowhere. Dispatch is idempotent: the same URL
// arriving twice (cold-start drain plus live event) re-runs safely because
// the downstream operations are themselves idempotent.
type Router struct {
	navDelay  time.Duration
	navigator Navigator
	logger    *slog.Logger

	integrations []service.SocialIntegration

	mu        sync.Mutex
	onConnect func(entity.Provider)
	loginURL  string
	hasLogin  bool
	timers    []*time.Timer
	closed    bool
}

// NewRouter is the constructor for Router.
func NewRouter(cfg *config.Config, integrations []service.SocialIntegration, navigator Navigator, logger *slog.Logger) *Router {
	delay := time.Second
	if cfg.DeepLink != nil && cfg.DeepLink.NavigationDelay > 0 {
		delay = cfg.DeepLink.NavigationDelay
	}

	return &Router{
		navDelay:     delay,
		navigator:    navigator,
		logger:       logger,
		integrations: integrations,
	}
}

// OnConnectCallback registers the handler run when a linking callback matches
// a pending session; the presenter installs a status re-fetch here.
func (r *Router) OnConnectCallback(fn func(entity.Provider)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.onConnect = fn
}

// DrainInitial feeds the launch URL through the router once. An app can be
// cold-started by a link, in which case no live event will ever arrive for it.
func (r *Router) DrainInitial(rawURL string) {
	if rawURL == "" {
		return
	}
	r.Handle(entity.InboundDeepLink{RawURL: rawURL, ReceivedAt: time.Now()})
}

// Handle classifies and dispatches one inbound URL, then discards it.
func (r *Router) Handle(link entity.InboundDeepLink) {
	class := Classify(link.RawURL)
	r.logger.Debug("Inbound deep link",
		slog.String("class", string(class)),
		slog.String("url", link.RawURL))

	switch class {
	case ClassProfileConnect:
		r.dispatchProfileConnect(link.RawURL)
	case ClassAuthCallback:
		r.dispatchAuthCallback(link.RawURL)
	case ClassIgnored:
	}
}

// Classify applies first-match-wins ordering: a URL carrying both a profile
// marker and a generic code parameter belongs to the linking flow, never the
// auth bridge. The two patterns look alike, and checking by substring order
// alone would misroute them.
func Classify(rawURL string) Classification {
	if hasProfileMarker(rawURL) {
		return ClassProfileConnect
	}
	if hasAuthMarker(rawURL) {
		return ClassAuthCallback
	}

	return ClassIgnored
}

func hasProfileMarker(rawURL string) bool {
	if strings.Contains(rawURL, profilePathMarker) {
		return true
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if strings.HasPrefix(parsed.Query().Get("state"), profileStateMarker) {
			return true
		}
	}

	// Fallback for URLs the parser rejects but that still carry the marker.
	return strings.Contains(rawURL, "state="+profileStateMarker)
}

func hasAuthMarker(rawURL string) bool {
	if strings.Contains(rawURL, authSessionMarker) {
		return true
	}

	if parsed, err := url.Parse(rawURL); err == nil {
		if parsed.Query().Get(codeParam) != "" {
			return true
		}
	} else if strings.Contains(rawURL, codeParam+"=") {
		return true
	}

	lower := strings.ToLower(rawURL)
	for _, marker := range providerMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// dispatchProfileConnect offers the URL to each provider's pending-session
// matcher; on a match the connect listener re-fetches status. No navigation.
func (r *Router) dispatchProfileConnect(rawURL string) {
	for _, integration := range r.integrations {
		if !integration.MatchCallback(rawURL) {
			continue
		}

		r.logger.Info("Linking callback matched",
			slog.String("provider", string(integration.Provider())))

		r.mu.Lock()
		fn := r.onConnect
		r.mu.Unlock()
		if fn != nil {
			fn(integration.Provider())
		}

		return
	}

	r.logger.Debug("Linking callback matched no pending session", slog.String("url", rawURL))
}

// dispatchAuthCallback stores the raw URL for the login screen to consume,
// then after a short fixed delay opens the bridge screen that hands it back.
func (r *Router) dispatchAuthCallback(rawURL string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return
	}
	r.loginURL = rawURL
	r.hasLogin = true

	timer := time.AfterFunc(r.navDelay, func() {
		if r.navigator != nil {
			r.navigator.NavigateToAuthBridge(rawURL)
		}
	})
	r.timers = append(r.timers, timer)
	r.mu.Unlock()
}

// TakeLoginCallback hands the stored login callback URL to the auth flow,
// consuming it.
func (r *Router) TakeLoginCallback() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasLogin {
		return "", false
	}
	raw := r.loginURL
	r.loginURL = ""
	r.hasLogin = false

	return raw, true
}

// Close stops pending navigation timers. Tied to the application root's
// shutdown, mirroring the listener's init/teardown lifecycle.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for _, timer := range r.timers {
		timer.Stop()
	}
	r.timers = nil
}
