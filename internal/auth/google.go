package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/cld-events/bidsim-api/internal/config"
)

const (
	googleJWKSEndpoint = "https://www.googleapis.com/oauth2/v3/certs"
	googleAuthURL      = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL     = "https://oauth2.googleapis.com/token"
)

// GoogleProfile is the authenticated triple returned by the identity provider.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier validates a third-party ID token and returns the
// authenticated profile. Implemented against Google; faked in tests.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleVerifier validates Google ID tokens against Google's published JWKS.
type GoogleVerifier struct {
	clientID string
	jwkCache *jwk.Cache
	logger   *logrus.Logger
}

// NewGoogleVerifier creates a verifier backed by a refreshing JWK cache.
func NewGoogleVerifier(cfg *config.GoogleConfig, logger *logrus.Logger) (*GoogleVerifier, error) {
	cache := jwk.NewCache(context.Background())

	if err := cache.Register(googleJWKSEndpoint, jwk.WithMinRefreshInterval(10*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
	}

	// Pre-fetch the keys
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := cache.Refresh(ctx, googleJWKSEndpoint); err != nil {
		logger.WithError(err).Warn("Failed to pre-fetch Google JWKS, will try during first request")
	}

	return &GoogleVerifier{
		clientID: cfg.ClientID,
		jwkCache: cache,
		logger:   logger,
	}, nil
}

// Verify checks the ID token's signature, expiry, issuer and audience, and
// returns the subject/email/name it asserts.
func (g *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		keyID, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid not found in token header")
		}

		set, err := g.jwkCache.Get(ctx, googleJWKSEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to get JWK set: %w", err)
		}

		key, found := set.LookupKeyID(keyID)
		if !found {
			return nil, fmt.Errorf("key with ID %s not found", keyID)
		}

		var verifyKey interface{}
		if err := key.Raw(&verifyKey); err != nil {
			return nil, fmt.Errorf("failed to get raw key: %w", err)
		}

		return verifyKey, nil
	}, jwt.WithValidMethods([]string{"RS256", "ES256"}))
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	if err := g.validateClaims(claims); err != nil {
		return nil, fmt.Errorf("claims validation failed: %w", err)
	}

	profile := &GoogleProfile{}
	profile.Subject, _ = claims["sub"].(string)
	profile.Email, _ = claims["email"].(string)
	profile.Name, _ = claims["name"].(string)

	if profile.Email == "" {
		return nil, fmt.Errorf("token carries no email")
	}

	return profile, nil
}

func (g *GoogleVerifier) validateClaims(claims jwt.MapClaims) error {
	// Expiry is checked by the parser; issuer and audience are ours to check.
	iss, _ := claims["iss"].(string)
	if iss != "accounts.google.com" && iss != "https://accounts.google.com" {
		return fmt.Errorf("invalid issuer: %s", iss)
	}

	switch aud := claims["aud"].(type) {
	case string:
		if aud != g.clientID {
			return fmt.Errorf("invalid audience: %s", aud)
		}
	case []interface{}:
		found := false
		for _, a := range aud {
			if s, ok := a.(string); ok && s == g.clientID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("audience %s not present", g.clientID)
		}
	default:
		return fmt.Errorf("aud claim must be string or array")
	}

	return nil
}

// GoogleOAuth drives the server-mediated authorization-code login for clients
// that cannot call the provider directly.
type GoogleOAuth struct {
	config *oauth2.Config
}

// NewGoogleOAuth builds the authorization-code exchange config.
func NewGoogleOAuth(cfg *config.GoogleConfig) *GoogleOAuth {
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
	}
}

// AuthCodeURL returns the provider URL to redirect the user to.
func (o *GoogleOAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// ExchangeIDToken swaps an authorization code for the provider's ID token.
// The returned token still has to be verified like any client-supplied one.
func (o *GoogleOAuth) ExchangeIDToken(ctx context.Context, code string) (string, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("code exchange failed: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("token response carries no id_token")
	}

	return idToken, nil
}
