package service

import (
	"context"
	"fmt"

	"kanban/internal/domain"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier exchanges an ID token for verified claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}

// GoogleVerifier validates Google-issued ID tokens for one OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google client id not configured", domain.ErrInvalidGoogleToken)
	}

	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGoogleToken, err)
	}
	if payload.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidGoogleToken)
	}

	id := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
