package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"st-blogs/internal/domain"
	"st-blogs/internal/service"
)

func newProtectedRouter(t *testing.T, sessionSvc *service.SessionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(sessionSvc), func(c *gin.Context) {
		claims, ok := GetSessionClaims(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID})
	})
	return r
}

func TestSessionAuthMiddleware_NoCookie(t *testing.T) {
	r := newProtectedRouter(t, service.NewSessionService("secret"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "No Token, Authorization Denied" {
		t.Fatalf("unexpected message: %v", got)
	}
}

func TestSessionAuthMiddleware_InvalidToken(t *testing.T) {
	r := newProtectedRouter(t, service.NewSessionService("secret"))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Invalid or Expired Token" {
		t.Fatalf("unexpected message: %v", got)
	}
}

func TestSessionAuthMiddleware_WrongSecretRejected(t *testing.T) {
	r := newProtectedRouter(t, service.NewSessionService("secret"))

	other := service.NewSessionService("otro-secreto")
	token, err := other.IssueSession(domain.User{ID: "u1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_ValidTokenExposesClaims(t *testing.T) {
	sessionSvc := service.NewSessionService("secret")
	r := newProtectedRouter(t, sessionSvc)

	token, err := sessionSvc.IssueSession(domain.User{ID: "u1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["id"]; got != "u1" {
		t.Fatalf("unexpected id: %v", got)
	}
}
