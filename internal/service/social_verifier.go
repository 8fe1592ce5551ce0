package service

import (
	"context"

	"google.golang.org/api/idtoken"
)

// SocialIdentity is the provider-side identity a social login resolves to
type SocialIdentity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// IDTokenVerifier checks a provider-issued ID token and returns its verified claims
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*SocialIdentity, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier validates Google ID tokens against clientID as the audience.
func NewGoogleVerifier(clientID string) IDTokenVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*SocialIdentity, error) {
	if v.clientID == "" {
		return nil, ErrProviderNotConfigured
	}

	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, err
	}

	return &SocialIdentity{
		ID:      payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
