package oauth

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProvider obtiene el perfil desde el endpoint userinfo de Google.
type GoogleProvider struct {
	config *oauth2.Config

	// APIBase permite apuntar a un servidor de prueba.
	APIBase string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		APIBase: "https://www.googleapis.com",
	}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *GoogleProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	client := p.config.Client(ctx, token)

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, p.APIBase+"/oauth2/v2/userinfo", &info); err != nil {
		return Profile{}, err
	}
	if info.ID == "" {
		return Profile{}, ErrNoProfile
	}

	return Profile{
		Provider: p.Name(),
		Subject:  info.ID,
		Email:    strings.ToLower(strings.TrimSpace(info.Email)),
		Name:     strings.TrimSpace(info.Name),
	}, nil
}
