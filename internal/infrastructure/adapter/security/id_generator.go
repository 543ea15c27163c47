package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator creates record identifiers from random UUIDs
type IDGenerator struct{}

// NewIDGenerator creates a new IDGenerator
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func shortHex() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// UserID returns USR followed by 8 uppercase hex characters
func (g *IDGenerator) UserID() string { return "USR" + shortHex() }

// BeneficiaryID returns BEN followed by 8 uppercase hex characters
func (g *IDGenerator) BeneficiaryID() string { return "BEN" + shortHex() }

// TransactionID returns TXN + YYYYmmddHHMMSS + 6 random digits
func (g *IDGenerator) TransactionID(at time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		n = big.NewInt(at.UnixNano() % 1_000_000)
	}
	return fmt.Sprintf("TXN%s%06d", at.UTC().Format("20060102150405"), n.Int64())
}

// AuditID returns a random UUID
func (g *IDGenerator) AuditID() string { return uuid.NewString() }

// EventID returns a random UUID
func (g *IDGenerator) EventID() string { return uuid.NewString() }
