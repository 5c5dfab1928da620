// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"sync"

	"questlink/internal/domain/entity"
	domainerrors "questlink/internal/domain/errors"
	"questlink/internal/domain/service"
	"questlink/internal/usecase"

	"github.com/pkg/errors"
)

// providerState is one provider's slot in the presenter.
type providerState struct {
	state        entity.ConnectionState
	conn         entity.ProviderConnection
	authorizeURL string
	qr           []byte
	alert        string

	// gen invalidates in-flight results: a refresh only applies if the
	// generation it captured is still current. Toggles and Detach bump it.
	gen uint64
}

// connectionService implements the ConnectionUsecase interface.
type connectionService struct {
	integrations map[entity.Provider]service.SocialIntegration
	qrService    service.QRCodeService
	logger       *slog.Logger

	mu     sync.Mutex
	states map[entity.Provider]*providerState

	listenerMu   sync.Mutex
	listeners    map[int]func(usecase.ConnectionSnapshot)
	nextListener int
}

// NewConnectionService is the constructor for connectionService.
func NewConnectionService(
	integrations []service.SocialIntegration,
	qrService service.QRCodeService,
	logger *slog.Logger,
) usecase.ConnectionUsecase {
	byProvider := make(map[entity.Provider]service.SocialIntegration, len(integrations))
	states := make(map[entity.Provider]*providerState, len(integrations))
	for _, integration := range integrations {
		byProvider[integration.Provider()] = integration
		states[integration.Provider()] = &providerState{
			state: entity.ConnectionUnknown,
			conn:  *entity.Disconnected(integration.Provider()),
		}
	}

	return &connectionService{
		integrations: byProvider,
		qrService:    qrService,
		logger:       logger,
		states:       states,
		listeners:    make(map[int]func(usecase.ConnectionSnapshot)),
	}
}

// Refresh re-fetches the provider's status. Concurrent refreshes are allowed;
// the later-resolving one wins, which is safe because both describe the same
// authoritative server state.
func (srv *connectionService) Refresh(ctx context.Context, provider entity.Provider) {
	integration, st := srv.lookup(provider)
	if integration == nil {
		return
	}

	srv.mu.Lock()
	gen := st.gen
	srv.mu.Unlock()

	conn, err := integration.Status(ctx)

	srv.mu.Lock()
	if st.gen != gen {
		// The screen detached or the user toggled while we were in flight.
		srv.mu.Unlock()

		return
	}

	switch {
	case errors.Is(err, domainerrors.ErrIntegrationUnavailable):
		st.state = entity.ConnectionUnavailable
		st.conn = *entity.Disconnected(provider)
	case err != nil || !conn.Connected:
		// Fail-safe: anything else resolves to disconnected.
		st.state = entity.ConnectionDisconnected
		st.conn = *entity.Disconnected(provider)
	default:
		st.state = entity.ConnectionConnected
		st.conn = *conn
	}
	st.authorizeURL = ""
	st.qr = nil
	snapshot := srv.snapshotLocked(provider, st)
	srv.mu.Unlock()

	srv.notify(snapshot)
}

// ToggleOn starts a connect flow. Only legal from Disconnected (or Unknown,
// which a user can reach before the first refresh settles).
func (srv *connectionService) ToggleOn(ctx context.Context, provider entity.Provider) error {
	integration, st := srv.lookup(provider)
	if integration == nil {
		return errors.Errorf("unknown provider %q", provider)
	}

	srv.mu.Lock()
	switch st.state {
	case entity.ConnectionConnecting:
		srv.mu.Unlock()

		return domainerrors.ErrConnectPending
	case entity.ConnectionConnected, entity.ConnectionUnavailable:
		srv.mu.Unlock()

		return errors.Errorf("cannot connect %s from state %s", provider, st.state)
	case entity.ConnectionUnknown, entity.ConnectionDisconnected:
	}
	st.state = entity.ConnectionConnecting
	st.alert = ""
	st.gen++
	gen := st.gen
	snapshot := srv.snapshotLocked(provider, st)
	srv.mu.Unlock()
	srv.notify(snapshot)

	outcome, err := integration.StartConnect(ctx)
	if err != nil {
		srv.settleFailedConnect(provider, st, gen, err)

		return err
	}

	switch outcome.Kind {
	case service.OutcomeConnected:
		// In-process login finished; the backend is the source of truth for
		// the resulting linkage.
		srv.Refresh(ctx, provider)
	case service.OutcomeAwaitingCallback:
		srv.mu.Lock()
		if st.gen == gen && st.state == entity.ConnectionConnecting {
			st.authorizeURL = outcome.AuthorizeURL
			st.qr = srv.renderQR(outcome.AuthorizeURL)
			snapshot = srv.snapshotLocked(provider, st)
			srv.mu.Unlock()
			srv.notify(snapshot)
		} else {
			srv.mu.Unlock()
		}
	case service.OutcomeFailed:
		srv.settleFailedConnect(provider, st, gen, errors.New(outcome.Reason))
	}

	return nil
}

// settleFailedConnect returns the machine to Disconnected with an alert,
// unless something else already moved it on.
func (srv *connectionService) settleFailedConnect(provider entity.Provider, st *providerState, gen uint64, cause error) {
	srv.logger.Warn("Connect flow failed",
		slog.String("provider", string(provider)),
		slog.Any("error", cause))

	srv.mu.Lock()
	if st.gen != gen {
		srv.mu.Unlock()

		return
	}
	st.state = entity.ConnectionDisconnected
	st.alert = alertMessage(cause, domainerrors.ErrConnectFailed)
	snapshot := srv.snapshotLocked(provider, st)
	srv.mu.Unlock()

	srv.notify(snapshot)
}

// ToggleOff disconnects a linked account, or cancels a pending redirect
// flow. State changes only after the backend confirms (or after the
// 404-is-success determination); there is no optimistic transition.
func (srv *connectionService) ToggleOff(ctx context.Context, provider entity.Provider) error {
	integration, st := srv.lookup(provider)
	if integration == nil {
		return errors.Errorf("unknown provider %q", provider)
	}

	srv.mu.Lock()
	if st.state == entity.ConnectionConnecting {
		integration.CancelConnect()
		st.state = entity.ConnectionDisconnected
		st.authorizeURL = ""
		st.qr = nil
		st.gen++
		snapshot := srv.snapshotLocked(provider, st)
		srv.mu.Unlock()
		srv.notify(snapshot)

		return nil
	}
	if st.state != entity.ConnectionConnected {
		srv.mu.Unlock()

		return errors.Errorf("cannot disconnect %s from state %s", provider, st.state)
	}
	st.gen++
	gen := st.gen
	srv.mu.Unlock()

	err := integration.Disconnect(ctx)

	srv.mu.Lock()
	if st.gen != gen {
		srv.mu.Unlock()

		return err
	}
	if err != nil {
		// Keep Connected; surface a short alert for the explicit action.
		st.alert = alertMessage(err, domainerrors.ErrDisconnectFailed)
	} else {
		st.state = entity.ConnectionDisconnected
		st.conn = *entity.Disconnected(provider)
		st.alert = ""
	}
	snapshot := srv.snapshotLocked(provider, st)
	srv.mu.Unlock()
	srv.notify(snapshot)

	return err
}

// HandleCallback resolves a pending redirect flow: the router matched the
// callback, so the authoritative state lives on the backend now.
func (srv *connectionService) HandleCallback(ctx context.Context, provider entity.Provider) {
	_, st := srv.lookup(provider)
	if st == nil {
		return
	}

	srv.mu.Lock()
	st.authorizeURL = ""
	st.qr = nil
	srv.mu.Unlock()

	srv.Refresh(ctx, provider)
}

// Snapshot returns the current render state for one provider.
func (srv *connectionService) Snapshot(provider entity.Provider) usecase.ConnectionSnapshot {
	_, st := srv.lookup(provider)
	if st == nil {
		return usecase.ConnectionSnapshot{Provider: provider, State: entity.ConnectionUnknown}
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.snapshotLocked(provider, st)
}

// Listen registers a change listener and returns its unsubscribe func.
func (srv *connectionService) Listen(fn func(usecase.ConnectionSnapshot)) func() {
	srv.listenerMu.Lock()
	id := srv.nextListener
	srv.nextListener++
	srv.listeners[id] = fn
	srv.listenerMu.Unlock()

	return func() {
		srv.listenerMu.Lock()
		delete(srv.listeners, id)
		srv.listenerMu.Unlock()
	}
}

// Detach bumps the provider's generation so results of requests started by a
// now-unmounted screen are discarded instead of applied.
func (srv *connectionService) Detach(provider entity.Provider) {
	_, st := srv.lookup(provider)
	if st == nil {
		return
	}

	srv.mu.Lock()
	st.gen++
	srv.mu.Unlock()
}

func (srv *connectionService) lookup(provider entity.Provider) (service.SocialIntegration, *providerState) {
	integration, ok := srv.integrations[provider]
	if !ok {
		srv.logger.Warn("Unknown provider", slog.String("provider", string(provider)))

		return nil, nil
	}

	return integration, srv.states[provider]
}

func (srv *connectionService) snapshotLocked(provider entity.Provider, st *providerState) usecase.ConnectionSnapshot {
	return usecase.ConnectionSnapshot{
		Provider:     provider,
		State:        st.state,
		Connection:   st.conn,
		AuthorizeURL: st.authorizeURL,
		QRCode:       st.qr,
		AlertMessage: st.alert,
	}
}

func (srv *connectionService) notify(snapshot usecase.ConnectionSnapshot) {
	srv.listenerMu.Lock()
	fns := make([]func(usecase.ConnectionSnapshot), 0, len(srv.listeners))
	for _, fn := range srv.listeners {
		fns = append(fns, fn)
	}
	srv.listenerMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func (srv *connectionService) renderQR(url string) []byte {
	if srv.qrService == nil || url == "" {
		return nil
	}

	png, err := srv.qrService.GenerateConnectQR(url)
	if err != nil {
		srv.logger.Warn("QR rendering failed", slog.Any("error", err))

		return nil
	}

	return png
}

// alertMessage prefers the catalog's localized message when the cause is an
// AppError, falling back to the given default.
func alertMessage(cause error, fallback domainerrors.AppError) string {
	var appErr domainerrors.AppError
	if errors.As(cause, &appErr) {
		return appErr.Message()
	}
	if cause != nil && cause.Error() != "" {
		return cause.Error()
	}

	return fallback.Message()
}
