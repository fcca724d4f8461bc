package googleauth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/priceview/backend/internal/domain"
)

// Verifier validates Google ID-token credentials against a client ID.
type Verifier struct {
	clientID string
}

// New creates a verifier for the given OAuth client ID.
func New(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify checks the credential's signature and audience and extracts the
// caller's identity claims.
func (v *Verifier) Verify(ctx context.Context, credential string) (*domain.GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	identity := &domain.GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		identity.Picture = picture
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email claim", domain.ErrInvalidToken)
	}
	return identity, nil
}
