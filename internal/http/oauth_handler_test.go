package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"st-blogs/internal/oauth"
	"st-blogs/internal/service"
)

type stubProvider struct {
	name        string
	profile     oauth.Profile
	exchangeErr error
	profileErr  error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (p *stubProvider) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "stub"}, nil
}

func (p *stubProvider) FetchProfile(_ context.Context, _ *oauth2.Token) (oauth.Profile, error) {
	if p.profileErr != nil {
		return oauth.Profile{}, p.profileErr
	}
	return p.profile, nil
}

func newOAuthTestEnv(t *testing.T, provider oauth.Provider) (*testEnv, *gin.Engine) {
	t.Helper()
	env := newTestEnv(t)

	userSvc := service.NewUserService(zap.NewNop(), env.userRepo, env.sender, env.sessionSvc, testClientURL, nil)
	oauthH := NewOAuthHandler(zap.NewNop(), userSvc, env.sessionSvc, map[string]oauth.Provider{
		provider.Name(): provider,
	}, testClientURL, false)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/auth/"+provider.Name(), oauthH.Redirect(provider.Name()))
	r.GET("/api/auth/"+provider.Name()+"/callback", oauthH.Callback(provider.Name()))
	return env, r
}

func stateCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "oauth_state" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatalf("expected state cookie in response")
	return nil
}

func TestOAuthRedirect_SetsStateAndLocation(t *testing.T) {
	provider := &stubProvider{name: "google"}
	_, r := newOAuthTestEnv(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	state := stateCookieFrom(t, rec)
	location := rec.Header().Get("Location")
	if !strings.Contains(location, "state="+state.Value) {
		t.Fatalf("expected location to carry state cookie value, got %q", location)
	}
}

func TestOAuthCallback_CreatesSessionAndRedirects(t *testing.T) {
	provider := &stubProvider{
		name: "google",
		profile: oauth.Profile{
			Provider: "google",
			Subject:  "g-123",
			Email:    "ana@x.com",
			Name:     "Ana",
		},
	}
	env, r := newOAuthTestEnv(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "abc"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != testClientURL {
		t.Fatalf("expected redirect to client, got %q", got)
	}
	cookie := sessionCookieFrom(t, rec)

	claims, err := env.sessionSvc.ParseSession(cookie.Value)
	if err != nil {
		t.Fatalf("parse issued session: %v", err)
	}
	user, err := env.userRepo.GetByID(context.Background(), claims.UserID)
	if err != nil {
		t.Fatalf("federated user not persisted: %v", err)
	}
	if user.Email != "ana@x.com" || !user.IsVerified || user.GoogleID != "g-123" {
		t.Fatalf("unexpected federated user: %+v", user)
	}
}

func TestOAuthCallback_StateMismatchFails(t *testing.T) {
	provider := &stubProvider{name: "google", profile: oauth.Profile{Provider: "google", Subject: "g-1", Email: "a@x.com"}}
	_, r := newOAuthTestEnv(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=evil&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "abc"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != testClientURL+"/login?error=OAuthFailed" {
		t.Fatalf("expected failure redirect, got %q", got)
	}
}

func TestOAuthCallback_NoEmailFails(t *testing.T) {
	provider := &stubProvider{name: "github", profile: oauth.Profile{Provider: "github", Subject: "42"}}
	_, r := newOAuthTestEnv(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/github/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "abc"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Location"); got != testClientURL+"/login?error=OAuthFailed" {
		t.Fatalf("expected failure redirect, got %q", got)
	}
}
