package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the persisted form of a chart-of-accounts entry.
// Note: ParentAccountID uses a pointer for the nullable self-reference.
type Account struct {
	AccountID          string            `db:"account_id"`
	AccountCode        string            `db:"account_code"`
	Name               string            `db:"name"`
	Description        string            `db:"description"`
	AccountType        string            `db:"account_type"`
	CurrencyCode       string            `db:"currency_code"`
	ParentAccountID    *string           `db:"parent_account_id"` // Nullable
	Status             string            `db:"status"`
	AllowManualEntries bool              `db:"allow_manual_entries"`
	IsSystemAccount    bool              `db:"is_system_account"`
	CurrentBalance     decimal.Decimal   `db:"current_balance"`
	PendingBalance     decimal.Decimal   `db:"pending_balance"`
	Metadata           map[string]string `db:"metadata"` // JSONB
	ClosedAt           *time.Time        `db:"closed_at"`
	AuditFields
}
