package auth

import "context"

// Claims is the identity returned by a successful token verification.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Verifier checks a bearer token against an identity provider. On any
// failure the whole request is rejected; there is no partial authentication.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
