package entity

import (
	"strings"
	"unicode"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
)

// Field rules shared by registration, beneficiaries and request binding
const (
	MinUsernameLength        = 3
	MaxUsernameLength        = 50
	MinPasswordLength        = 8
	MinAccountNumberLength   = 10
	MaxAccountNumberLength   = 20
	MinBeneficiaryNameLength = 2
	MaxBeneficiaryNameLength = 100
	MinBankNameLength        = 3
	MaxDescriptionLength     = 255

	// PasswordSpecialChars lists the characters that satisfy the special character rule
	PasswordSpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// knownBanks are matched case-insensitively in either direction
var knownBanks = []string{
	"HBL", "Habib Bank Limited",
	"UBL", "United Bank Limited",
	"MCB", "Muslim Commercial Bank",
	"NBP", "National Bank of Pakistan",
	"Allied Bank", "Allied Bank Limited",
	"Standard Chartered", "Standard Chartered Bank",
	"Faysal Bank", "Bank Alfalah",
	"Askari Bank", "JS Bank",
	"Meezan Bank", "Dubai Islamic Bank",
	"Soneri Bank", "Summit Bank",
	"Samba Bank", "KASB Bank",
}

// NormalizeUsername trims and lowercases a username
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks length and the [a-z0-9_] alphabet of a normalized username
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return errs.NewValidationError("username", "must be between 3 and 50 characters")
	}
	for _, r := range username {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return errs.NewValidationError("username", "may only contain letters, digits and underscores")
		}
	}
	return nil
}

// ValidatePasswordStrength requires length, upper, lower, digit and a special character
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return errs.NewValidationError("password", "must be at least 8 characters long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		}
	}

	var missing []string
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return errs.NewValidationError("password", "must contain "+strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeAccountNumber strips dashes and spaces
func NormalizeAccountNumber(accountNumber string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(accountNumber))
}

// ValidateAccountNumber checks a normalized account number
func ValidateAccountNumber(accountNumber string) error {
	if accountNumber == "" {
		return errs.NewFieldError("account_number", "is required", errs.ErrInvalidAccount)
	}
	for _, r := range accountNumber {
		if r < '0' || r > '9' {
			return errs.NewFieldError("account_number", "must contain only digits", errs.ErrInvalidAccount)
		}
	}
	if len(accountNumber) < MinAccountNumberLength || len(accountNumber) > MaxAccountNumberLength {
		return errs.NewFieldError("account_number", "must be between 10 and 20 digits", errs.ErrInvalidAccount)
	}
	if strings.Count(accountNumber, accountNumber[:1]) == len(accountNumber) {
		return errs.NewFieldError("account_number", "cannot be a single repeated digit", errs.ErrInvalidAccount)
	}
	return nil
}

// ValidateBeneficiaryName checks the display name of a saved payee
func ValidateBeneficiaryName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinBeneficiaryNameLength || len(name) > MaxBeneficiaryNameLength {
		return errs.NewValidationError("name", "must be between 2 and 100 characters")
	}
	return nil
}

// ValidateBankName checks the bank name of a saved payee
func ValidateBankName(bankName string) error {
	if len(strings.TrimSpace(bankName)) < MinBankNameLength {
		return errs.NewValidationError("bank_name", "must be at least 3 characters")
	}
	return nil
}

// ValidateTransferDescription limits the free text stored with a transfer
func ValidateTransferDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return errs.NewValidationError("description", "must be at most 255 characters")
	}
	return nil
}

// IsKnownBank reports whether the bank name matches the common bank list
func IsKnownBank(bankName string) bool {
	name := strings.ToLower(strings.TrimSpace(bankName))
	if name == "" {
		return false
	}
	for _, bank := range knownBanks {
		b := strings.ToLower(bank)
		if strings.Contains(b, name) || strings.Contains(name, b) {
			return true
		}
	}
	return false
}
