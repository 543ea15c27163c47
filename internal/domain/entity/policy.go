package entity

import "github.com/shopspring/decimal"

// BankingPolicy holds the limits and defaults applied by the business services
type BankingPolicy struct {
	Currency               string
	SupportedCurrencies    []string
	DefaultStartingBalance decimal.Decimal
	DefaultDailyLimit      decimal.Decimal
	MinDailyLimit          decimal.Decimal
	MaxDailyLimit          decimal.Decimal
	MinTransactionAmount   decimal.Decimal
	MaxTransactionAmount   decimal.Decimal
	DailyTransactionLimit  int
}

// DefaultBankingPolicy returns the stock limits
func DefaultBankingPolicy() BankingPolicy {
	return BankingPolicy{
		Currency:               "PKR",
		SupportedCurrencies:    []string{"PKR", "USD"},
		DefaultStartingBalance: decimal.NewFromInt(1000),
		DefaultDailyLimit:      decimal.NewFromInt(10000),
		MinDailyLimit:          decimal.NewFromInt(1000),
		MaxDailyLimit:          decimal.NewFromInt(100000),
		MinTransactionAmount:   decimal.NewFromInt(1),
		MaxTransactionAmount:   decimal.NewFromInt(50000),
		DailyTransactionLimit:  10,
	}
}

// DailyLimitInRange reports whether a requested per-user daily limit is allowed
func (p BankingPolicy) DailyLimitInRange(limit decimal.Decimal) bool {
	return limit.GreaterThanOrEqual(p.MinDailyLimit) && limit.LessThanOrEqual(p.MaxDailyLimit)
}
