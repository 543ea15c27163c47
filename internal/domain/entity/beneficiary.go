package entity

import (
	"strings"
	"time"
)

// Beneficiary is a saved payee account a user can transfer to
type Beneficiary struct {
	OwnerUserID   string
	ID            string // BEN + 8 hex characters
	Name          string
	BankName      string
	AccountNumber string
	AddedAt       time.Time
}

// SameName compares beneficiary names case-insensitively
func (b *Beneficiary) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(b.Name), strings.TrimSpace(name))
}

// Matches reports whether the query appears in the name, bank or account number.
// exact requires a full case-insensitive match on one of those fields.
func (b *Beneficiary) Matches(query string, exact bool) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{strings.ToLower(b.Name), strings.ToLower(b.BankName), b.AccountNumber}
	for _, f := range fields {
		if exact && f == q {
			return true
		}
		if !exact && strings.Contains(f, q) {
			return true
		}
	}
	return false
}
