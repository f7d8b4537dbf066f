package models

import "time"

// AuditTrailEntry is the persisted form of an immutable audit record.
// Rows are append-only; there are no update or delete paths.
type AuditTrailEntry struct {
	AuditID       string            `db:"audit_id"`
	TransactionID *string           `db:"transaction_id"` // Nullable
	AccountID     *string           `db:"account_id"`     // Nullable
	Action        string            `db:"action"`
	OldValue      string            `db:"old_value"`
	NewValue      string            `db:"new_value"`
	UserID        string            `db:"user_id"`
	IPAddress     string            `db:"ip_address"`
	UserAgent     string            `db:"user_agent"`
	Metadata      map[string]string `db:"metadata"` // JSONB
	Timestamp     time.Time         `db:"timestamp"`
}
