package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"st-blogs/internal/oauth"
	"st-blogs/internal/service"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 600 // seconds
)

// OAuthHandler maneja el baile de redirects del login federado. Los fallos
// viajan por el canal de navegación (redirect con query flag), no como JSON:
// el navegador del usuario es quien ejecuta el round trip.
type OAuthHandler struct {
	logger        *zap.Logger
	userServ      *service.UserService
	sessionServ   *service.SessionService
	providers     map[string]oauth.Provider
	clientURL     string
	secureCookies bool
}

// NewOAuthHandler crea una instancia de OAuthHandler con los adaptadores de
// proveedor inyectados.
func NewOAuthHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	sessionServ *service.SessionService,
	providers map[string]oauth.Provider,
	clientURL string,
	secureCookies bool,
) *OAuthHandler {
	return &OAuthHandler{
		logger:        logger,
		userServ:      userServ,
		sessionServ:   sessionServ,
		providers:     providers,
		clientURL:     strings.TrimRight(clientURL, "/"),
		secureCookies: secureCookies,
	}
}

// Redirect devuelve el handler de GET /api/auth/<provider>: manda al
// navegador a la pantalla de consentimiento del proveedor.
func (h *OAuthHandler) Redirect(providerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := h.providers[providerName]
		if !ok {
			h.failLogin(c)
			return
		}

		state := uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookieName, state, stateCookieTTL, "/", "", h.secureCookies, true)
		c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
	}
}

// Callback devuelve el handler de GET /api/auth/<provider>/callback: canjea
// el code, normaliza el perfil, resuelve el usuario local y setea la cookie
// de sesión.
func (h *OAuthHandler) Callback(providerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := h.providers[providerName]
		if !ok {
			h.failLogin(c)
			return
		}

		state := c.Query("state")
		storedState, err := c.Cookie(stateCookieName)
		if err != nil || state == "" || state != storedState {
			h.logger.Warn("oauth state mismatch", zap.String("provider", providerName))
			h.failLogin(c)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookieName, "", -1, "/", "", h.secureCookies, true)

		code := c.Query("code")
		if code == "" {
			h.failLogin(c)
			return
		}

		token, err := provider.Exchange(c.Request.Context(), code)
		if err != nil {
			h.logger.Warn("oauth code exchange failed", zap.String("provider", providerName), zap.Error(err))
			h.failLogin(c)
			return
		}

		profile, err := provider.FetchProfile(c.Request.Context(), token)
		if err != nil {
			h.logger.Warn("oauth profile fetch failed", zap.String("provider", providerName), zap.Error(err))
			h.failLogin(c)
			return
		}

		user, err := h.userServ.FederatedLogin(c.Request.Context(), service.FederatedInput{
			Provider: profile.Provider,
			Subject:  profile.Subject,
			Email:    profile.Email,
			Name:     profile.Name,
		})
		if err != nil {
			h.logger.Warn("federated login failed", zap.String("provider", providerName), zap.Error(err))
			h.failLogin(c)
			return
		}

		sessionToken, err := h.sessionServ.IssueSession(user)
		if err != nil {
			h.logger.Error("session issue failed", zap.Error(err))
			h.failLogin(c)
			return
		}

		setSessionCookie(c, sessionToken, h.secureCookies)
		c.Redirect(http.StatusFound, h.clientURL)
	}
}

func (h *OAuthHandler) failLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, h.clientURL+"/login?error=OAuthFailed")
}
