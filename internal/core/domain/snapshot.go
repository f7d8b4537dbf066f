package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalanceSnapshot is a point-in-time capture of an account's balance,
// used for historical trial-balance queries without replaying the full entry
// history. Snapshots are written by period close.
type AccountBalanceSnapshot struct {
	SnapshotID       string          `json:"snapshotID"` // Primary Key (UUID)
	AccountID        string          `json:"accountID"`  // FK -> Account
	BalanceDate      time.Time       `json:"balanceDate"`
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	ClosingBalance   decimal.Decimal `json:"closingBalance"`
	DebitTotal       decimal.Decimal `json:"debitTotal"`
	CreditTotal      decimal.Decimal `json:"creditTotal"`
	TransactionCount int             `json:"transactionCount"`
	CurrencyCode     string          `json:"currencyCode"`
	CreatedAt        time.Time       `json:"createdAt"`
}
