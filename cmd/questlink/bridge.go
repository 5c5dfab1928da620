package main

import (
	"context"
	"log/slog"
	"sync"

	"questlink/internal/usecase"
)

// authBridge is the headless rendition of the bridge screen: its sole job is
// handing a received login callback back to the auth flow. The auth usecase
// is bound after construction because the router (which needs the bridge)
// is also the usecase's callback source.
type authBridge struct {
	logger *slog.Logger

	mu   sync.Mutex
	auth usecase.AuthUsecase
}

func newAuthBridge(logger *slog.Logger) *authBridge {
	return &authBridge{logger: logger}
}

func (b *authBridge) bind(auth usecase.AuthUsecase) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.auth = auth
}

// NavigateToAuthBridge completes the social login with the stored callback URL.
func (b *authBridge) NavigateToAuthBridge(rawURL string) {
	b.mu.Lock()
	auth := b.auth
	b.mu.Unlock()

	if auth == nil {
		b.logger.Warn("Login callback arrived before the auth flow was ready")

		return
	}

	if _, err := auth.ConsumeLoginCallback(context.Background()); err != nil {
		b.logger.Warn("Login callback could not be consumed", slog.Any("error", err))
	}
}
