package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	"github.com/shopspring/decimal"
)

// User represents a bank customer with a single account
type User struct {
	ID            string          // USR + 8 hex characters
	Username      string          // lowercased, unique
	PasswordHash  string          // bcrypt hash
	AccountNumber string          // digits only, unique
	Balance       decimal.Decimal // two decimal places
	DailyLimit    decimal.Decimal // maximum total of outgoing transfers per UTC day
	CreatedAt     time.Time
}

// CanDebit checks if the user has enough balance for a deduction
func (u *User) CanDebit(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Debit subtracts the amount from the balance.
// Returns an InsufficientBalanceError and leaves the balance untouched when funds are short.
func (u *User) Debit(amount decimal.Decimal) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if !u.CanDebit(amount) {
		return errs.NewInsufficientBalanceError(u.ID, FormatAmount(amount), FormatAmount(u.Balance))
	}
	u.Balance = u.Balance.Sub(amount)
	return nil
}

// Credit adds the amount to the balance
func (u *User) Credit(amount decimal.Decimal) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	u.Balance = u.Balance.Add(amount)
	return nil
}

// Clone returns a copy that can be mutated without touching the original
func (u *User) Clone() *User {
	c := *u
	return &c
}
