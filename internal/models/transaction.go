package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is the persisted form of a balanced financial event.
// Journal entry rows reference it via transaction_id and are loaded
// separately.
type LedgerTransaction struct {
	TransactionID         string            `db:"transaction_id"`
	ReferenceNumber       string            `db:"reference_number"`
	TransactionType       string            `db:"transaction_type"`
	Description           string            `db:"description"`
	CurrencyCode          string            `db:"currency_code"`
	TotalAmount           decimal.Decimal   `db:"total_amount"`
	Status                string            `db:"status"`
	SourceService         string            `db:"source_service"`
	SourceTransactionID   string            `db:"source_transaction_id"`
	Metadata              map[string]string `db:"metadata"` // JSONB
	TransactionDate       time.Time         `db:"transaction_date"`
	PostedAt              *time.Time        `db:"posted_at"`
	ReversedAt            *time.Time        `db:"reversed_at"`
	ReversalReason        string            `db:"reversal_reason"`
	ReversalTransactionID *string           `db:"reversal_transaction_id"` // Nullable
	AuditFields
}
