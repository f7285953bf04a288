// Package jwt validates bearer credentials issued by the external identity
// front-door. Pulse never mints its own login tokens: the credential is a
// symmetric-secret-signed JWT carrying subject/email/displayName, the same
// shape the identity-sync endpoint uses when upserting the user row.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pulsechat/pulse/pkg/errcode"
)

// Claims are the fields carried by an external-identity-provider token.
type Claims struct {
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// GenerateToken is used only by local tooling and tests to mint a credential
// in the same shape the external identity provider would; production tokens
// always come from that front-door, never from this service.
func GenerateToken(subject, email, displayName, secret string, expireHours int) (string, error) {
	claims := Claims{
		Subject:     subject,
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "pulse-identity",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry and returns the claims. It does
// not check whether the subject resolves to a persisted user; that is the
// Auth Verifier's job, one layer up, since it needs a repository lookup.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errcode.ErrTokenInvalid.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errcode.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, errcode.ErrTokenInvalid
	}
	return claims, nil
}
