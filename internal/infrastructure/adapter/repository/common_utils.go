package repository

import (
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// formatTime renders timestamps as RFC3339 UTC
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime accepts RFC3339 with or without fractional seconds; bad cells read as zero time
func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC()
	}
	// naive timestamps written by older tooling
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func formatAmount(d decimal.Decimal) string {
	return entity.FormatAmount(d)
}

// parseAmount reads a stored amount; corrupt cells read as zero
func parseAmount(raw string) decimal.Decimal {
	d, err := entity.ParseStoredAmount(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
