package impl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"questlink/internal/domain/entity"
	domainerrors "questlink/internal/domain/errors"
	"questlink/internal/domain/repository"
	"questlink/internal/domain/service"
	"questlink/internal/infra/api"
	"questlink/internal/usecase"

	"github.com/pkg/errors"
)

// loginResponse is the backend's login DTO, shared by the password and the
// OAuth code-exchange endpoints.
type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token" validate:"required"`
	User    struct {
		ID          string    `json:"id"`
		DisplayName string    `json:"displayName"`
		Email       string    `json:"email"`
		Role        string    `json:"role"`
		CreatedAt   time.Time `json:"createdAt"`
	} `json:"user"`
}

// authService implements the AuthUsecase interface.
type authService struct {
	client      *api.Client
	credentials repository.CredentialRepository
	inspector   service.TokenInspector
	callbacks   usecase.LoginCallbackSource
	logger      *slog.Logger
}

// NewAuthService is the constructor for authService. It installs the 401
// hook on the HTTP client: an invalid credential is cleared at the client
// boundary so every caller observes the logout at once.
func NewAuthService(
	client *api.Client,
	credentials repository.CredentialRepository,
	inspector service.TokenInspector,
	callbacks usecase.LoginCallbackSource,
	logger *slog.Logger,
) usecase.AuthUsecase {
	srv := &authService{
		client:      client,
		credentials: credentials,
		inspector:   inspector,
		callbacks:   callbacks,
		logger:      logger,
	}

	client.SetOnUnauthorized(func() {
		logger.Info("Backend rejected the credential, clearing session")
		if err := credentials.Clear(context.Background()); err != nil {
			logger.Error("Failed to clear credential after 401", slog.Any("error", err))
		}
	})

	return srv
}

// Login authenticates with email/password and stores the credential pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	var resp loginResponse
	if err := srv.client.Post(ctx, "/auth/login", input, &resp); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.Unauthorized() {
			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login rejected")
		}

		return nil, errors.Wrap(err, "login")
	}

	return srv.storeSession(ctx, &resp)
}

// ConsumeLoginCallback completes a social login from a stored deep link.
func (srv *authService) ConsumeLoginCallback(ctx context.Context) (*usecase.LoginOutput, error) {
	raw, ok := srv.callbacks.TakeLoginCallback()
	if !ok {
		return nil, errors.New("no login callback pending")
	}

	code := extractAuthCode(raw)
	if code == "" {
		return nil, domainerrors.ErrOAuthCodeInvalid.WrapMessage("callback carries no code")
	}

	var resp loginResponse
	if err := srv.client.Post(ctx, "/auth/oauth/callback", map[string]string{"code": code}, &resp); err != nil {
		return nil, errors.Wrap(err, "exchange authorization code")
	}

	return srv.storeSession(ctx, &resp)
}

// storeSession merges the response profile with the token's claims and
// persists both atomically.
func (srv *authService) storeSession(ctx context.Context, resp *loginResponse) (*usecase.LoginOutput, error) {
	profile := entity.UserProfile{
		ID:          resp.User.ID,
		DisplayName: resp.User.DisplayName,
		Email:       resp.User.Email,
		Role:        entity.Role(resp.User.Role),
		CreatedAt:   resp.User.CreatedAt,
	}

	// The token's claims fill any gap the response left; the backend signs
	// them, so on conflict the token wins for identity fields.
	if claims, err := srv.inspector.Inspect(resp.Token); err == nil {
		if claims.Subject != "" {
			profile.ID = claims.Subject
		}
		if !profile.Role.Valid() {
			profile.Role = claims.Role
		}
		if profile.Email == "" {
			profile.Email = claims.Email
		}
		if profile.DisplayName == "" {
			profile.DisplayName = claims.Name
		}
	} else {
		srv.logger.Warn("Bearer token not inspectable", slog.Any("error", err))
		if !profile.Role.Valid() {
			profile.Role = entity.RoleCustomer
		}
	}

	cred := entity.Credential{Token: resp.Token, IssuedAt: time.Now()}
	if err := srv.credentials.Save(ctx, cred, profile); err != nil {
		return nil, errors.Wrap(err, "store credential")
	}

	srv.logger.Info("Logged in",
		slog.String("user_id", profile.ID),
		slog.String("role", string(profile.Role)))

	return &usecase.LoginOutput{Profile: profile}, nil
}

// Logout clears the stored credential. The backend call is best-effort: a
// device can always log itself out.
func (srv *authService) Logout(ctx context.Context) error {
	if err := srv.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		srv.logger.Warn("Backend logout failed, clearing locally anyway", slog.Any("error", err))
	}

	if err := srv.credentials.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear credential")
	}

	return nil
}

// CurrentUser returns the cached profile; ok is false when logged out.
func (srv *authService) CurrentUser() (entity.UserProfile, bool) {
	_, profile, ok := srv.credentials.Load()

	return profile, ok
}

// extractAuthCode pulls the authorization code out of a callback URL.
func extractAuthCode(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return parsed.Query().Get("code")
}
