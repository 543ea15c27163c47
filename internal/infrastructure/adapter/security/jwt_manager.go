package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
)

// JWTConfig configures token signing
type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// plutusClaims is the token payload
type plutusClaims struct {
	Username      string `json:"username"`
	AccountNumber string `json:"account_number"`
	Type          string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 tokens
type JWTManager struct {
	cfg   JWTConfig
	clock coreport.TimeProvider
}

// NewJWTManager creates a token manager
func NewJWTManager(cfg JWTConfig, clock coreport.TimeProvider) *JWTManager {
	if cfg.AccessExpiry <= 0 {
		cfg.AccessExpiry = 30 * time.Minute
	}
	if cfg.RefreshExpiry <= 0 {
		cfg.RefreshExpiry = 7 * 24 * time.Hour
	}
	return &JWTManager{cfg: cfg, clock: clock}
}

// Issue signs a token of the given type for the subject
func (m *JWTManager) Issue(subject coreport.TokenSubject, tokenType coreport.TokenType) (*coreport.IssuedToken, error) {
	expiry := m.cfg.AccessExpiry
	if tokenType == coreport.RefreshToken {
		expiry = m.cfg.RefreshExpiry
	}

	now := m.clock.Now()
	expiresAt := now.Add(expiry)
	claims := plutusClaims{
		Username:      subject.Username,
		AccountNumber: subject.AccountNumber,
		Type:          string(tokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID,
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &coreport.IssuedToken{Token: signed, ExpiresIn: expiry, ExpiresAt: expiresAt}, nil
}

// Validate parses the token and checks signature, expiry and type
func (m *JWTManager) Validate(token string, expected coreport.TokenType) (*coreport.TokenClaims, error) {
	claims := &plutusClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if claims.Type != string(expected) {
		return nil, fmt.Errorf("%w: expected %s token", errs.ErrInvalidToken, expected)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", errs.ErrInvalidToken)
	}

	out := &coreport.TokenClaims{
		TokenSubject: coreport.TokenSubject{
			UserID:        claims.Subject,
			Username:      claims.Username,
			AccountNumber: claims.AccountNumber,
		},
		Type:    coreport.TokenType(claims.Type),
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	return out, nil
}
