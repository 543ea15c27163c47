package repository

// Table names
const (
	UsersTable         = "users"
	BeneficiariesTable = "beneficiaries"
	TransactionsTable  = "transactions"
	AuditLogsTable     = "audit_logs"
	IdempotencyTable   = "idempotency_keys"
)

var schemas = map[string][]string{
	UsersTable: {
		"user_id", "username", "hashed_password", "account_number",
		"balance", "daily_limit", "created_at",
	},
	BeneficiariesTable: {
		"owner_user_id", "beneficiary_id", "name", "bank_name",
		"account_number", "added_at",
	},
	TransactionsTable: {
		"transaction_id", "from_user_id", "to_user_id", "from_account", "to_account",
		"amount", "status", "description", "timestamp", "daily_total_sent",
	},
	AuditLogsTable: {
		"log_id", "user_id", "action", "details", "timestamp", "ip_address", "request_id",
	},
	IdempotencyTable: {
		"idempotency_key", "user_id", "request_hash", "transaction_id", "created_at",
	},
}

// SchemaRegistry is implemented by the storage manager
type SchemaRegistry interface {
	RegisterTable(table string, headers []string)
}

// RegisterSchemas declares the canonical header of every table
func RegisterSchemas(r SchemaRegistry) {
	for table, headers := range schemas {
		r.RegisterTable(table, headers)
	}
}

// Headers returns a copy of the canonical header of a table
func Headers(table string) []string {
	return append([]string(nil), schemas[table]...)
}
