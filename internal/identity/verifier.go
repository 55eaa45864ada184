// Package identity verifies signed access tokens offline and extracts the
// identity claim set used by the decision pipeline.
package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken indicates a token whose signature, algorithm, or claims
// failed verification.
var ErrInvalidToken = errors.New("invalid token")

// Verifier validates RS256-signed access tokens against a fixed public key.
// Verification is pure computation; it never touches the network.
type Verifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewVerifier creates a Verifier from a PEM-encoded key. The identity
// provider hands out the key in certificate form; the certificate is
// normalized to its embedded RSA public key here, once, at startup. A plain
// public-key PEM is accepted as well.
func NewVerifier(pemBytes []byte) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Verifier{
		key:    key,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
	}, nil
}

// Verify decodes and validates a token, returning its claim set. Any
// mismatch in algorithm, signature, or validity window fails with
// ErrInvalidToken.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
