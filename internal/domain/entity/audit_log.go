package entity

import "time"

// AuditAction names an audited operation
type AuditAction string

// Audited actions
const (
	ActionUserRegistered     AuditAction = "user_registered"
	ActionRegistrationFailed AuditAction = "registration_failed"
	ActionLoginSuccess       AuditAction = "login_success"
	ActionLoginFailed        AuditAction = "login_failed"
	ActionTokenRefreshed     AuditAction = "token_refreshed"
	ActionPasswordChanged    AuditAction = "password_changed"
	ActionPasswordChangeFail AuditAction = "password_change_failed"
	ActionLogout             AuditAction = "logout"
	ActionBalanceCheck       AuditAction = "balance_check"
	ActionDeposit            AuditAction = "deposit"
	ActionWithdrawal         AuditAction = "withdrawal"
	ActionWithdrawalFailed   AuditAction = "withdrawal_failed"
	ActionDailyLimitUpdated  AuditAction = "daily_limit_updated"
	ActionBeneficiaryAdded   AuditAction = "beneficiary_added"
	ActionBeneficiaryUpdated AuditAction = "beneficiary_updated"
	ActionBeneficiaryRemoved AuditAction = "beneficiary_removed"
	ActionMoneySent          AuditAction = "money_sent"
	ActionTransferFailed     AuditAction = "transfer_failed"
)

// SystemActor is the audit user id for events without an authenticated user
const SystemActor = "system"

// UnknownOrigin fills ip address and request id when they are not known
const UnknownOrigin = "unknown"

// AuditEntry is an append-only record of a user action
type AuditEntry struct {
	ID        string
	UserID    string
	Action    AuditAction
	Details   map[string]any
	Timestamp time.Time
	IPAddress string
	RequestID string
}
