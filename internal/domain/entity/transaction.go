package entity

import (
	"sort"
	"time"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"

	"github.com/shopspring/decimal"
)

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusProcessing TransactionStatus = "processing"
	StatusSuccess    TransactionStatus = "success"
	StatusFailed     TransactionStatus = "failed"
)

// IsValid reports whether the status belongs to the known vocabulary
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// TransactionKind is derived from the counterparties of a transaction
type TransactionKind string

// Transaction kinds
const (
	KindTransfer   TransactionKind = "transfer"
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Counterparty markers stored in the user and account columns
const (
	// SystemParty is the counterparty of deposits and withdrawals
	SystemParty = "SYSTEM"
	// ExternalParty is the receiver when the beneficiary account is not held at this bank
	ExternalParty = "EXTERNAL"
)

// Transaction represents a movement of money recorded in the transactions table
type Transaction struct {
	ID             string // TXN + yyyymmddHHMMSS + 6 digits
	FromUserID     string
	ToUserID       string
	FromAccount    string
	ToAccount      string
	Amount         decimal.Decimal
	Status         TransactionStatus
	Description    string
	Timestamp      time.Time
	DailyTotalSent decimal.Decimal // sender's same-day transfer total including this one
}

// Kind classifies the transaction by its counterparties
func (t *Transaction) Kind() TransactionKind {
	switch {
	case t.FromUserID == SystemParty:
		return KindDeposit
	case t.ToUserID == SystemParty:
		return KindWithdrawal
	default:
		return KindTransfer
	}
}

// InvolvesUser reports whether the user is the sender or the receiver
func (t *Transaction) InvolvesUser(userID string) bool {
	return t.FromUserID == userID || t.ToUserID == userID
}

// CountsTowardDailyLimit reports whether this is a successful outgoing transfer of the user on the given UTC day
func (t *Transaction) CountsTowardDailyLimit(userID string, day time.Time) bool {
	return t.FromUserID == userID &&
		t.Kind() == KindTransfer &&
		t.Status == StatusSuccess &&
		SameUTCDay(t.Timestamp, day)
}

// SameUTCDay compares the calendar dates of two instants in UTC
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// StartOfUTCDay truncates t to midnight UTC
func StartOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortNewestFirst orders transactions by timestamp descending, keeping table order for ties
func SortNewestFirst(txns []*Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.After(txns[j].Timestamp)
	})
}

// ValidateDateRange rejects an end date before the start date
func ValidateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return errs.ErrInvalidDateRange
	}
	return nil
}

// InRange reports whether t lies within the optional inclusive bounds
func InRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}
