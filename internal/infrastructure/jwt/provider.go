package jwtinfra

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every bearer and required on verification.
const Issuer = "event-notify"

// Claims identify the caller of an API request: who they are, what they may do
// and which session the bearer belongs to, so logout can revoke it.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 bearers.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	parser     *jwt.Parser
}

// NewProvider loads the PEM key pair named in cfg.
func NewProvider(cfg *config.Config) (*Provider, error) {
	privPEM, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	pubPEM, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return NewProviderFromPEM(privPEM, pubPEM, cfg.JWTExpiry)
}

// NewProviderFromPEM builds a provider from in-memory PEM blocks.
func NewProviderFromPEM(privPEM, pubPEM []byte, expiry time.Duration) (*Provider, error) {
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		expiry:     expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Sign issues a bearer for one session of userID.
func (p *Provider) Sign(userID, role, sessionID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

// Verify parses a bearer. Every rejection wraps domain.ErrUnauthorized.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	_, err := p.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return p.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: bearer without user or session", domain.ErrUnauthorized)
	}
	return &claims, nil
}
