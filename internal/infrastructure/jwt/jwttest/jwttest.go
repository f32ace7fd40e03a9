// Package jwttest builds throwaway RS256 providers for tests.
package jwttest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	jwtinfra "github.com/event-notify/internal/infrastructure/jwt"
	"github.com/stretchr/testify/require"
)

// NewProvider returns a provider backed by a freshly generated key pair.
func NewProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privPEM, pubPEM := KeyPair(t)
	p, err := jwtinfra.NewProviderFromPEM(privPEM, pubPEM, 24*time.Hour)
	require.NoError(t, err)
	return p
}

// KeyPair generates a PEM encoded RSA key pair.
func KeyPair(t *testing.T) (privPEM, pubPEM []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	return privPEM, pubPEM
}
