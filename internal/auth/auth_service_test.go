package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, pemBytes
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims TokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestValidateToken(t *testing.T) {
	key, pub := newKeyPair(t)
	svc, err := NewAuthService(pub)
	if err != nil {
		t.Fatal(err)
	}

	signed := signToken(t, key, TokenClaims{
		UserID:    42,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.TokenType != "access" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	key, pub := newKeyPair(t)
	svc, err := NewAuthService(pub)
	if err != nil {
		t.Fatal(err)
	}

	signed := signToken(t, key, TokenClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	if _, err := svc.ValidateToken(signed); err == nil {
		t.Error("expired token accepted")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	otherKey, _ := newKeyPair(t)
	_, pub := newKeyPair(t)
	svc, err := NewAuthService(pub)
	if err != nil {
		t.Fatal(err)
	}

	signed := signToken(t, otherKey, TokenClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	if _, err := svc.ValidateToken(signed); err == nil {
		t.Error("token signed by a different key accepted")
	}
}

func TestValidateTokenRejectsWrongAlgorithm(t *testing.T) {
	_, pub := newKeyPair(t)
	svc, err := NewAuthService(pub)
	if err != nil {
		t.Fatal(err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{UserID: 1})
	signed, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ValidateToken(signed); err == nil {
		t.Error("HS256 token accepted")
	}
}

func TestNewAuthServiceRejectsGarbage(t *testing.T) {
	if _, err := NewAuthService(nil); err == nil {
		t.Error("empty pem accepted")
	}
	if _, err := NewAuthService([]byte("not a pem")); err == nil {
		t.Error("garbage pem accepted")
	}
}
