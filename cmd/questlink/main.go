package main

import (
	"context"
	"log/slog"
	"os"

	"questlink/config"
	"questlink/internal/delivery"
	"questlink/internal/delivery/callback"
	"questlink/internal/domain/entity"
	"questlink/internal/domain/repository"
	"questlink/internal/domain/service"
	"questlink/internal/infra/api"
	"questlink/internal/infra/auth"
	"questlink/internal/infra/deeplink"
	logs "questlink/internal/infra/log"
	"questlink/internal/infra/persistence/sqlite"
	"questlink/internal/infra/qrcode"
	"questlink/internal/infra/social"
	"questlink/internal/infra/social/facebook"
	"questlink/internal/infra/social/tiktok"
	"questlink/internal/usecase"
	"questlink/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			wireRouter,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		sqlite.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewCredentialRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			api.NewClient,
			auth.NewTokenInspector,
			social.NewBackend,
			facebook.NewClient,
			tiktok.NewClient,
			newIntegrations,
			newRelationshipChecker,
			newQRCodeService,
			newAuthBridge,
			newRouter,
		),
	)
}

// newIntegrations collects the provider clients behind the shared contract.
func newIntegrations(fb *facebook.Client, tt *tiktok.Client) []service.SocialIntegration {
	return []service.SocialIntegration{fb, tt}
}

// newRelationshipChecker exposes the Facebook page-relationship extension to
// the quest verification flow.
func newRelationshipChecker(fb *facebook.Client) service.RelationshipChecker {
	return fb
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func newRouter(cfg *config.Config, integrations []service.SocialIntegration, bridge *authBridge, logger *slog.Logger) *deeplink.Router {
	return deeplink.NewRouter(cfg, integrations, bridge, logger)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			newConnectionService,
			newAuthService,
		),
	)
}

func newConnectionService(integrations []service.SocialIntegration, qr service.QRCodeService, logger *slog.Logger) usecase.ConnectionUsecase {
	return impl.NewConnectionService(integrations, qr, logger)
}

func newAuthService(
	client *api.Client,
	credentials repository.CredentialRepository,
	inspector service.TokenInspector,
	router *deeplink.Router,
	bridge *authBridge,
	logger *slog.Logger,
) usecase.AuthUsecase {
	auth := impl.NewAuthService(client, credentials, inspector, router, logger)
	bridge.bind(auth)

	return auth
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				callback.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// wireRouter connects the router's callback notifications to the presenter,
// drains a cold-start launch URL and kicks off the initial status fetches.
func wireRouter(
	lc fx.Lifecycle,
	ctx context.Context,
	cfg *config.Config,
	router *deeplink.Router,
	connections usecase.ConnectionUsecase,
	integrations []service.SocialIntegration,
) {
	router.OnConnectCallback(func(provider entity.Provider) {
		go connections.HandleCallback(ctx, provider)
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.DeepLink != nil {
				router.DrainInitial(cfg.DeepLink.InitialURL)
			}
			for _, integration := range integrations {
				go connections.Refresh(ctx, integration.Provider())
			}

			return nil
		},
		OnStop: func(context.Context) error {
			router.Close()

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
