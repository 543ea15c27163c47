package core

import "time"

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches the stored hash
	Verify(hash, password string) bool
}

// TokenType distinguishes short-lived access tokens from refresh tokens
type TokenType string

// Token types
const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// TokenSubject is the identity carried by a token
type TokenSubject struct {
	UserID        string
	Username      string
	AccountNumber string
}

// TokenClaims is the validated content of a token
type TokenClaims struct {
	TokenSubject
	Type      TokenType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a signed token and its lifetime
type IssuedToken struct {
	Token     string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// TokenManager issues and validates signed tokens
type TokenManager interface {
	Issue(subject TokenSubject, tokenType TokenType) (*IssuedToken, error)
	// Validate returns ErrInvalidToken when the token is malformed, expired, or of another type
	Validate(token string, expected TokenType) (*TokenClaims, error)
}
