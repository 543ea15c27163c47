package entity

import "time"

// IdempotencyRecord binds a client supplied key to the transfer it produced
type IdempotencyRecord struct {
	Key           string
	UserID        string
	RequestHash   string // sha256 of the canonical request
	TransactionID string
	CreatedAt     time.Time
}
