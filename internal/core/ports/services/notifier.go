package services

import "context"

// Ledger event names emitted to the analytics/notification sink.
const (
	EventTransactionReversed    = "ledger.transaction_reversed"
	EventPeriodCloseCompleted   = "ledger.period_close_completed"
	EventReconciliationVariance = "ledger.reconciliation_variance"
	EventExportCompleted        = "ledger.export_completed"
)

// LedgerEventNotifier publishes significant ledger events to an external sink.
// Delivery is best effort; failures never block ledger operations.
type LedgerEventNotifier interface {
	// Notify publishes a named event with its properties.
	Notify(ctx context.Context, userID string, event string, properties map[string]any)

	// Close flushes any buffered events and releases the underlying client.
	Close() error
}
