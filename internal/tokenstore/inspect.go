package tokenstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes a stored token without exposing it.
type TokenInfo struct {
	JWT       bool       `json:"jwt"`
	Subject   string     `json:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issuedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

// Inspect reads the registered claims of a JWT. The signature is NOT
// verified; the result is for display only.
func Inspect(token string, now time.Time) TokenInfo {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{
		JWT:     true,
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.Time
		info.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		info.ExpiresAt = &t
		info.Expired = now.After(t)
	}
	return info
}
