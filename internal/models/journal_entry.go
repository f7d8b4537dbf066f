package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the persisted form of a single debit or credit line within
// a ledger transaction, affecting exactly one account. Amounts are always
// positive; direction is carried by entry_type.
type JournalEntry struct {
	EntryID       string            `db:"entry_id"`
	TransactionID string            `db:"transaction_id"` // FK -> ledger_transactions
	AccountID     string            `db:"account_id"`     // FK -> accounts
	EntryType     string            `db:"entry_type"`     // DEBIT or CREDIT
	Amount        decimal.Decimal   `db:"amount"`
	CurrencyCode  string            `db:"currency_code"`
	Description   string            `db:"description"`
	Status        string            `db:"status"`
	EntrySequence int               `db:"entry_sequence"`
	Metadata      map[string]string `db:"metadata"` // JSONB
	PostedAt      *time.Time        `db:"posted_at"`
	AuditFields
}
