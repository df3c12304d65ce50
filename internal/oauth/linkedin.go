package oauth

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

// LinkedinProvider obtiene el perfil desde el endpoint OIDC userinfo de
// LinkedIn.
type LinkedinProvider struct {
	config *oauth2.Config

	// APIBase permite apuntar a un servidor de prueba.
	APIBase string
}

func NewLinkedinProvider(clientID, clientSecret, redirectURL string) *LinkedinProvider {
	return &LinkedinProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     linkedin.Endpoint,
		},
		APIBase: "https://api.linkedin.com",
	}
}

func (p *LinkedinProvider) Name() string { return "linkedin" }

func (p *LinkedinProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *LinkedinProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

func (p *LinkedinProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	client := p.config.Client(ctx, token)

	var info struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, p.APIBase+"/v2/userinfo", &info); err != nil {
		return Profile{}, err
	}
	if info.Sub == "" {
		return Profile{}, ErrNoProfile
	}

	return Profile{
		Provider: p.Name(),
		Subject:  info.Sub,
		Email:    strings.ToLower(strings.TrimSpace(info.Email)),
		Name:     strings.TrimSpace(info.Name),
	}, nil
}
