package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// newTestKey generates an RSA key pair and returns the private key together
// with its certificate-form and public-key-form PEM encodings.
func newTestKey(t *testing.T) (*rsa.PrivateKey, []byte, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "cert-authgate-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return key, certPEM, pubPEM
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestNewVerifierAcceptsCertificateAndPublicKeyPEM(t *testing.T) {
	_, certPEM, pubPEM := newTestKey(t)

	if _, err := NewVerifier(certPEM); err != nil {
		t.Errorf("certificate PEM rejected: %v", err)
	}
	if _, err := NewVerifier(pubPEM); err != nil {
		t.Errorf("public key PEM rejected: %v", err)
	}
}

func TestNewVerifierRejectsGarbage(t *testing.T) {
	if _, err := NewVerifier([]byte("not a pem block")); err == nil {
		t.Error("expected error for non-PEM input")
	}
}

func TestVerifyExtractsClaims(t *testing.T) {
	key, certPEM, _ := newTestKey(t)
	v, err := NewVerifier(certPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	token := signToken(t, key, &Claims{
		Owner:       "acme",
		Name:        "alice",
		DisplayName: "Alice",
		Email:       "alice@acme.example",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Owner != "acme" || claims.Name != "alice" {
		t.Errorf("got owner=%q name=%q, want acme/alice", claims.Owner, claims.Name)
	}
	if got := claims.Subject(); got != "acme/alice" {
		t.Errorf("Subject() = %q, want %q", got, "acme/alice")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key, _, _ := newTestKey(t)
	_, otherCert, _ := newTestKey(t)

	v, err := NewVerifier(otherCert)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	token := signToken(t, key, &Claims{Owner: "acme", Name: "alice"})
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	_, certPEM, _ := newTestKey(t)
	v, err := NewVerifier(certPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	// An HMAC token must fail regardless of its signature.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Owner: "acme", Name: "alice"}).
		SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign HS256 token: %v", err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	key, certPEM, _ := newTestKey(t)
	v, err := NewVerifier(certPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	token := signToken(t, key, &Claims{
		Owner: "acme",
		Name:  "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	_, certPEM, _ := newTestKey(t)
	v, err := NewVerifier(certPEM)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	if _, err := v.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}
