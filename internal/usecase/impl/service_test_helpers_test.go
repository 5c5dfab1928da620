package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"questlink/internal/domain/entity"
	"questlink/internal/domain/service"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeIntegration scripts one provider's behavior per test.
type fakeIntegration struct {
	provider     entity.Provider
	statusFn     func(ctx context.Context) (*entity.ProviderConnection, error)
	startFn      func(ctx context.Context) (*service.ConnectOutcome, error)
	disconnectFn func(ctx context.Context) error
	matchFn      func(rawURL string) bool

	mu        sync.Mutex
	cancelled int
}

func (f *fakeIntegration) Provider() entity.Provider { return f.provider }

func (f *fakeIntegration) Status(ctx context.Context) (*entity.ProviderConnection, error) {
	if f.statusFn == nil {
		return entity.Disconnected(f.provider), nil
	}

	return f.statusFn(ctx)
}

func (f *fakeIntegration) StartConnect(ctx context.Context) (*service.ConnectOutcome, error) {
	if f.startFn == nil {
		return &service.ConnectOutcome{Kind: service.OutcomeFailed, Reason: "not scripted"}, nil
	}

	return f.startFn(ctx)
}

func (f *fakeIntegration) Disconnect(ctx context.Context) error {
	if f.disconnectFn == nil {
		return nil
	}

	return f.disconnectFn(ctx)
}

func (f *fakeIntegration) MatchCallback(rawURL string) bool {
	if f.matchFn == nil {
		return false
	}

	return f.matchFn(rawURL)
}

func (f *fakeIntegration) CancelConnect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelled++
}

func (f *fakeIntegration) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.cancelled
}

// fakeQRService returns a fixed payload so tests can assert the snapshot
// carries a rendered code without decoding PNGs.
type fakeQRService struct{}

func (fakeQRService) GenerateConnectQR(string) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func connectedConn(provider entity.Provider, username string) *entity.ProviderConnection {
	return &entity.ProviderConnection{
		Provider:         provider,
		Connected:        true,
		ExternalUsername: username,
	}
}
