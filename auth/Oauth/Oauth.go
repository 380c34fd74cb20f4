package Oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	gsessions "github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/config"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/models"
	"github.com/basit/fileshare-catalog/repositories"
)

const (
	// SessionName is the gin session cookie.
	SessionName = "fileshare_session"
	// RefreshCookie holds the refresh token, scoped to the auth routes.
	RefreshCookie     = "refresh_token"
	RefreshCookiePath = "/api/auth"

	sessionMaxAge = 86400 * 7
)

// InitStore builds the cookie store for gin sessions and registers the
// configured OAuth providers with goth. gothic keeps its OAuth state in a
// separate gorilla cookie store under the same secret.
func InitStore(cfg *config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	oauthStore := gsessions.NewCookieStore([]byte(cfg.SessionSecret))
	oauthStore.Options = &gsessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = oauthStore

	var providers []goth.Provider
	if cfg.GoogleClientID != "" {
		providers = append(providers, google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			"email",
			"profile",
		))
	}
	if cfg.GitHubClientID != "" {
		providers = append(providers, github.New(
			cfg.GitHubClientID,
			cfg.GitHubClientSecret,
			cfg.GitHubRedirectURL,
			"user:email",
		))
	}
	goth.UseProviders(providers...)

	return store
}

type Handler struct {
	users       repositories.UserRepository
	sessions    *auth.Service
	frontendURL string
	secure      bool
	logger      logging.Logger
}

func NewHandler(users repositories.UserRepository, sessions *auth.Service, cfg *config.Config, logger logging.Logger) *Handler {
	return &Handler{
		users:       users,
		sessions:    sessions,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		secure:      cfg.SecureCookies,
		logger:      logger,
	}
}

func withProvider(c *gin.Context) string {
	provider := c.Param("provider")
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	return provider
}

// Begin starts the OAuth dance with the provider named in the path.
func (h *Handler) Begin(c *gin.Context) {
	provider := withProvider(c)
	if _, err := goth.GetProvider(provider); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown sign-in provider"})
		return
	}
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback completes the OAuth dance, signs the user in and sends the
// browser back to the frontend with an access token.
func (h *Handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	withProvider(c)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn(ctx, "oauth completion failed", "provider", c.Param("provider"), "error", err)
		c.Redirect(http.StatusFound, h.frontendURL+"/auth?error=oauth_failed")
		return
	}

	user, err := h.findOrCreateUser(ctx, gothUser)
	if err != nil {
		h.logger.Error(ctx, "error processing oauth user", "provider", gothUser.Provider, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process user data"})
		return
	}

	tokens, err := h.sessions.IssueSession(ctx, user)
	if err != nil {
		h.logger.Error(ctx, "error issuing session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}
	SetRefreshCookie(c, tokens.RefreshToken, int(h.sessions.RefreshTTL().Seconds()), h.secure)

	session := sessions.Default(c)
	session.Set("user_id", user.ID.String())
	if err := session.Save(); err != nil {
		h.logger.Warn(ctx, "session save failed", "error", err)
	}

	h.logger.Info(ctx, "oauth sign-in", "provider", gothUser.Provider, "user_id", user.ID)
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/success?token=%s", h.frontendURL, url.QueryEscape(tokens.AccessToken)))
}

// SetRefreshCookie stores the refresh token in an HTTP-only cookie. A
// negative maxAge clears it.
func SetRefreshCookie(c *gin.Context, token string, maxAge int, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshCookie,
		Value:    token,
		Path:     RefreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// findOrCreateUser looks the user up by provider id, then by email (linking
// the provider), and creates a regular account otherwise.
func (h *Handler) findOrCreateUser(ctx context.Context, gu goth.User) (*models.User, error) {
	user, err := h.users.GetByProviderID(ctx, gu.Provider, gu.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("find by provider id: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	if email == "" {
		return nil, fmt.Errorf("provider %s returned no email", gu.Provider)
	}

	user, err = h.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		linkProvider(user, gu)
		if err := h.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("link oauth account: %w", err)
		}
		return user, nil
	case errors.Is(err, common.ErrNotFound):
		user = &models.User{Email: email}
		linkProvider(user, gu)
		if err := h.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	default:
		return nil, fmt.Errorf("find by email: %w", err)
	}
}

func linkProvider(user *models.User, gu goth.User) {
	provider, id := gu.Provider, gu.UserID
	user.Provider = &provider
	switch provider {
	case "google":
		user.GoogleID = &id
	case "github":
		user.GitHubID = &id
	}
}
