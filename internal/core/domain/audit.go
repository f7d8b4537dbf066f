package domain

import "time"

// Audit trail actions recorded by the ledger engines.
const (
	AuditAccountCreated       = "account_created"
	AuditAccountUpdated       = "account_updated"
	AuditAccountClosed        = "account_closed"
	AuditTransactionRecorded  = "transaction_recorded"
	AuditTransactionUpdated   = "transaction_updated"
	AuditTransactionPosted    = "transaction_posted"
	AuditTransactionReversed  = "transaction_reversed"
	AuditAccountBalanceChange = "account_balance_changed"
	AuditReconciliationRun    = "reconciliation_performed"
	AuditValidationRun        = "bookkeeping_validated"
	AuditSnapshotCreated      = "balance_snapshot_created"
	AuditPeriodClosePerformed = "period_close_performed"
	AuditLedgerDataExported   = "ledger_data_exported"
)

// AuditTrailEntry is an immutable record of a ledger mutation. Entries are
// append-only: once written they are never updated or deleted.
type AuditTrailEntry struct {
	AuditID       string            `json:"auditID"`                 // Primary Key (UUID)
	TransactionID string            `json:"transactionID,omitempty"` // Nullable FK -> LedgerTransaction
	AccountID     string            `json:"accountID,omitempty"`     // Nullable FK -> Account
	Action        string            `json:"action"`
	OldValue      string            `json:"oldValue,omitempty"` // JSON snapshot before the mutation
	NewValue      string            `json:"newValue,omitempty"` // JSON snapshot after the mutation
	UserID        string            `json:"userID,omitempty"`
	IPAddress     string            `json:"ipAddress,omitempty"`
	UserAgent     string            `json:"userAgent,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
