package identity

import (
	"context"
	"errors"
	"fmt"

	"saas-platform/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OAuthFlow wraps the authorization-code flow against the configured OIDC
// provider. The provider only establishes who the user is (email + display
// fields); tenant and role resolution always goes through the Directory.
type OAuthFlow struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// ProviderProfile is the identity asserted by the external provider.
type ProviderProfile struct {
	Email   string
	Name    string
	Picture string
}

func NewOAuthFlow(ctx context.Context, cfg config.OAuthConfig) (*OAuthFlow, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery failed: %w", err)
	}
	return &OAuthFlow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthURL returns the provider authorization URL for the given CSRF state.
func (f *OAuthFlow) AuthURL(state string) string {
	return f.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens, verifies the ID token
// and extracts the provider profile. An ID token without an email claim is
// rejected; email is the directory key.
func (f *OAuthFlow) Exchange(ctx context.Context, code string) (ProviderProfile, error) {
	oauth2Token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return ProviderProfile{}, errors.New("no id_token in provider response")
	}

	idToken, err := f.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("id token verification failed: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return ProviderProfile{}, fmt.Errorf("id token claims: %w", err)
	}
	if claims.Email == "" {
		return ProviderProfile{}, errors.New("provider did not assert an email")
	}

	return ProviderProfile{Email: claims.Email, Name: claims.Name, Picture: claims.Picture}, nil
}
