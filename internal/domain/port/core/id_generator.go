package core

import "time"

// IDGenerator creates identifiers for persisted records
type IDGenerator interface {
	// UserID returns USR followed by 8 uppercase hex characters
	UserID() string
	// BeneficiaryID returns BEN followed by 8 uppercase hex characters
	BeneficiaryID() string
	// TransactionID returns TXN followed by the UTC timestamp and 6 random digits
	TransactionID(at time.Time) string
	// AuditID returns a random UUID
	AuditID() string
	// EventID returns a random UUID
	EventID() string
}
