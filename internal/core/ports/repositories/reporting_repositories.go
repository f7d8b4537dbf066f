package repositories

import (
	"context"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
)

// ReportingRepository defines the read-only aggregations behind the reporting
// engine. Implementations derive every figure from posted journal entries;
// stored account balances are never trusted here.
type ReportingRepository interface {
	// GetTrialBalanceData computes one row per account by replaying posted
	// entries up to the filter's cutoff, placing balances in their natural
	// debit/credit columns.
	GetTrialBalanceData(ctx context.Context, filter TrialBalanceFilter) ([]domain.TrialBalanceEntry, error)

	// GetLedgerMetricsData aggregates account/transaction counts, per-type
	// totals and per-currency balances for the metrics dashboard.
	GetLedgerMetricsData(ctx context.Context, filter MetricsFilter) (*domain.LedgerMetrics, error)
}

// SnapshotWriter persists point-in-time balance captures.
type SnapshotWriter interface {
	// SaveSnapshot persists a balance snapshot.
	SaveSnapshot(ctx context.Context, snapshot domain.AccountBalanceSnapshot) error
}

// SnapshotReader reads historical balance captures.
type SnapshotReader interface {
	// ListSnapshots retrieves snapshots for an account, optionally bounded by
	// balance date, ordered oldest first.
	ListSnapshots(ctx context.Context, accountID string, startDate, endDate *time.Time) ([]domain.AccountBalanceSnapshot, error)
}

// SnapshotRepositoryFacade combines the snapshot interfaces.
type SnapshotRepositoryFacade interface {
	SnapshotWriter
	SnapshotReader
}
