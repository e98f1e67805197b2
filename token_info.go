package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is a display-only peek at a bearer token. The token is
// contractually opaque: nothing here is verified, and expiry is never
// enforced client-side. A stale token is discovered by the backend
// rejecting it.
type TokenInfo struct {
	JWT       bool
	Subject   string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// InspectToken decodes JWT-shaped tokens without verifying the signature.
// Opaque tokens yield TokenInfo{JWT: false}.
func InspectToken(token string) TokenInfo {
	if token == "" {
		return TokenInfo{}
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{JWT: true}

	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		info.Issuer = iss
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}

	return info
}
