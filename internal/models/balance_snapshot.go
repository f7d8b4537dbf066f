package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalanceSnapshot is the persisted form of a point-in-time balance
// capture written by period close.
type AccountBalanceSnapshot struct {
	SnapshotID       string          `db:"snapshot_id"`
	AccountID        string          `db:"account_id"` // FK -> accounts
	BalanceDate      time.Time       `db:"balance_date"`
	OpeningBalance   decimal.Decimal `db:"opening_balance"`
	ClosingBalance   decimal.Decimal `db:"closing_balance"`
	DebitTotal       decimal.Decimal `db:"debit_total"`
	CreditTotal      decimal.Decimal `db:"credit_total"`
	TransactionCount int             `db:"transaction_count"`
	CurrencyCode     string          `db:"currency_code"`
	CreatedAt        time.Time       `db:"created_at"`
}
