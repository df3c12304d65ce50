package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func staticToken() *oauth2.Token {
	return &oauth2.Token{AccessToken: "test-access-token", TokenType: "Bearer"}
}

func TestGoogleProvider_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/v2/userinfo" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"g-123","email":"Ana@X.com","name":" Ana "}`))
	}))
	defer srv.Close()

	p := NewGoogleProvider("cid", "secret", "http://localhost/cb")
	p.APIBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), staticToken())
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.Provider != "google" || profile.Subject != "g-123" {
		t.Fatalf("unexpected identity: %+v", profile)
	}
	if profile.Email != "ana@x.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}
	if profile.Name != "Ana" {
		t.Fatalf("expected trimmed name, got %q", profile.Name)
	}
}

func TestGoogleProvider_NoSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewGoogleProvider("cid", "secret", "http://localhost/cb")
	p.APIBase = srv.URL

	if _, err := p.FetchProfile(context.Background(), staticToken()); err != ErrNoProfile {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}

func TestGithubProvider_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			w.Write([]byte(`{"id":42,"login":"octo","name":"Octo Cat","email":"octo@x.com"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewGithubProvider("cid", "secret", "http://localhost/cb")
	p.APIBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), staticToken())
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.Provider != "github" || profile.Subject != "42" {
		t.Fatalf("unexpected identity: %+v", profile)
	}
	if profile.Email != "octo@x.com" || profile.Name != "Octo Cat" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestGithubProvider_FallsBackToPrimaryEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			w.Write([]byte(`{"id":42,"login":"octo","name":"","email":null}`))
		case "/user/emails":
			w.Write([]byte(`[
				{"email":"old@x.com","primary":false,"verified":true},
				{"email":"bot@x.com","primary":true,"verified":false},
				{"email":"Octo@X.com","primary":true,"verified":true}
			]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewGithubProvider("cid", "secret", "http://localhost/cb")
	p.APIBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), staticToken())
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.Email != "octo@x.com" {
		t.Fatalf("expected primary verified email, got %q", profile.Email)
	}
	if profile.Name != "octo" {
		t.Fatalf("expected login fallback for name, got %q", profile.Name)
	}
}

func TestGithubProvider_NoUsableEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/user":
			w.Write([]byte(`{"id":42,"login":"octo"}`))
		case "/user/emails":
			w.Write([]byte(`[{"email":"bot@x.com","primary":true,"verified":false}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewGithubProvider("cid", "secret", "http://localhost/cb")
	p.APIBase = srv.URL

	if _, err := p.FetchProfile(context.Background(), staticToken()); err != ErrNoProfile {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}

func TestLinkedinProvider_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/userinfo" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"li-7","name":"Ana","email":"ana@x.com"}`))
	}))
	defer srv.Close()

	p := NewLinkedinProvider("cid", "secret", "http://localhost/cb")
	p.APIBase = srv.URL

	profile, err := p.FetchProfile(context.Background(), staticToken())
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if profile.Provider != "linkedin" || profile.Subject != "li-7" || profile.Email != "ana@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestAuthCodeURL_CarriesState(t *testing.T) {
	p := NewGoogleProvider("cid", "secret", "http://localhost/cb")

	url := p.AuthCodeURL("abc123")
	if !strings.Contains(url, "state=abc123") {
		t.Fatalf("expected state in url, got %q", url)
	}
	if !strings.Contains(url, "client_id=cid") {
		t.Fatalf("expected client id in url, got %q", url)
	}
}
