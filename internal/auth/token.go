package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a login session and its cookie.
const DefaultSessionTTL = 7 * 24 * time.Hour

// TokenConfig bundles the configuration required to build a TokenSigner.
type TokenConfig struct {
	Secret string
	Issuer string
	Clock  func() time.Time
}

// Claims are the claims carried by the session cookie. The token only references a
// server-side session; it grants nothing on its own.
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenInput holds the parameters used when signing a session token.
type TokenInput struct {
	SessionID string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// TokenSigner issues and validates HS256 session tokens.
type TokenSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenSigner constructs a TokenSigner when provided with the required configuration.
func NewTokenSigner(cfg TokenConfig) (*TokenSigner, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("token: secret must be provided")
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenSigner{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		now:    now,
	}, nil
}

// Sign issues a signed token referencing the given session.
func (s *TokenSigner) Sign(input TokenInput) (string, error) {
	if input.SessionID == "" {
		return "", errors.New("token: session id is required")
	}

	now := s.now()
	claims := &Claims{
		SessionID: input.SessionID,
		Email:     input.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        input.SessionID,
			Subject:   input.UserID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(input.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, algorithm, issuer and time claims of a session token.
func (s *TokenSigner) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token: token string is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: parse: %w", err)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errors.New("token: invalid issuer")
	}

	if claims.SessionID == "" {
		return nil, errors.New("token: missing session id claim")
	}

	return &claims, nil
}
