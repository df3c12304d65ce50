package oauth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GithubProvider obtiene el perfil desde la API de GitHub. GitHub a veces no
// incluye email en el perfil primario; en ese caso se consulta /user/emails
// y se toma el email primario verificado.
type GithubProvider struct {
	config *oauth2.Config

	// APIBase permite apuntar a un servidor de prueba.
	APIBase string
}

func NewGithubProvider(clientID, clientSecret, redirectURL string) *GithubProvider {
	return &GithubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		APIBase: "https://api.github.com",
	}
}

func (p *GithubProvider) Name() string { return "github" }

func (p *GithubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GithubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *GithubProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	client := p.config.Client(ctx, token)

	var info struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, p.APIBase+"/user", &info); err != nil {
		return Profile{}, err
	}
	if info.ID == 0 {
		return Profile{}, ErrNoProfile
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		fetched, err := p.fetchPrimaryEmail(ctx, client)
		if err != nil {
			return Profile{}, err
		}
		email = fetched
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = info.Login
	}

	return Profile{
		Provider: p.Name(),
		Subject:  strconv.FormatInt(info.ID, 10),
		Email:    email,
		Name:     name,
	}, nil
}

func (p *GithubProvider) fetchPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, p.APIBase+"/user/emails", &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return strings.ToLower(strings.TrimSpace(e.Email)), nil
		}
	}
	return "", ErrNoProfile
}
