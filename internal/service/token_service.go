package service

import (
	"errors"
	"fmt"

	"klikjasa-wallet/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// baasClaims are the claims carried by access tokens issued by the BaaS.
type baasClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier implements ports.TokenVerifier for HS256 tokens signed with
// the BaaS JWT secret. It only validates; tokens are issued elsewhere.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier for the given shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses and validates a token, returning its claims.
func (v *JWTVerifier) Verify(tokenString string) (*ports.TokenClaims, error) {
	claims := &baasClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject claim")
	}

	return &ports.TokenClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
