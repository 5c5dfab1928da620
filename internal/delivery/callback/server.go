// Package callback hosts the loopback server OAuth redirects land on. It is
// the process's stand-in for the OS deep-link mechanism: every URL it
// receives is handed to the deep-link router unchanged.
package callback

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"questlink/config"
	"questlink/internal/delivery"
	"questlink/internal/domain/entity"
	"questlink/internal/domain/lifecycle"
	"questlink/internal/infra/deeplink"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	slogecho "github.com/samber/slog-echo"
	"go.uber.org/fx"
)

const returnPage = `<!doctype html><html><body>
<p>เชื่อมต่อสำเร็จ กลับไปที่แอปได้เลย</p>
<p>You can close this window and return to the app.</p>
</body></html>`

// Params holds dependencies for the callback server.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	Router *deeplink.Router
}

type callbackServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// NewServer creates the loopback callback server.
func NewServer(params Params) (delivery.Delivery, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Use(slogecho.New(params.Logger))
	echoServer.Use(middleware.Recover())

	handler := &callbackHandler{router: params.Router}
	echoServer.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	echoServer.GET("/callback", handler.handle)
	echoServer.GET("/callback/*", handler.handle)

	srv := &callbackServer{
		cfg:    params.Config,
		logger: params.Logger,
		server: echoServer,
	}

	params.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve starts the callback server on the loopback interface only.
func (s *callbackServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.cfg.Callback.Port))
	s.logger.Info("Starting callback server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil {
		return errors.Wrap(err, "failed to serve callbacks")
	}

	return nil
}

func (s *callbackServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down callback server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}

type callbackHandler struct {
	router *deeplink.Router
}

// handle reconstructs the full URL the provider redirected to and feeds it
// through the router, then shows a small return-to-app page.
func (h *callbackHandler) handle(c echo.Context) error {
	req := c.Request()
	raw := "http://" + req.Host + req.RequestURI

	h.router.Handle(entity.InboundDeepLink{
		RawURL:     raw,
		ReceivedAt: time.Now(),
	})

	return c.HTML(http.StatusOK, returnPage)
}
