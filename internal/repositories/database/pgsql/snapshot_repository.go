package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

const snapshotColumns = `snapshot_id, account_id, balance_date, opening_balance, closing_balance,
	debit_total, credit_total, transaction_count, currency_code, created_at`

type PgxSnapshotRepository struct {
	BaseRepository
}

// newPgxSnapshotRepository creates a new repository for balance snapshots.
func newPgxSnapshotRepository(pool *pgxpool.Pool) portsrepo.SnapshotRepositoryFacade {
	return &PgxSnapshotRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxSnapshotRepository implements the snapshot repository facade
var _ portsrepo.SnapshotRepositoryFacade = (*PgxSnapshotRepository)(nil)

// SaveSnapshot persists a balance snapshot.
func (r *PgxSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.AccountBalanceSnapshot) error {
	m := mapping.ToModelSnapshot(snapshot)

	query := `
		INSERT INTO balance_snapshots (` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SnapshotID,
		m.AccountID,
		m.BalanceDate,
		m.OpeningBalance,
		m.ClosingBalance,
		m.DebitTotal,
		m.CreditTotal,
		m.TransactionCount,
		m.CurrencyCode,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", m.SnapshotID, err)
	}
	return nil
}

// ListSnapshots retrieves snapshots for an account, optionally bounded by
// balance date, ordered oldest first.
func (r *PgxSnapshotRepository) ListSnapshots(ctx context.Context, accountID string, startDate, endDate *time.Time) ([]domain.AccountBalanceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM balance_snapshots WHERE account_id = $1`
	args := []interface{}{accountID}
	if startDate != nil {
		args = append(args, *startDate)
		query += " AND balance_date >= $" + strconv.Itoa(len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		query += " AND balance_date <= $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY balance_date;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelSnapshots := make([]models.AccountBalanceSnapshot, 0)
	for rows.Next() {
		var m models.AccountBalanceSnapshot
		if err := rows.Scan(
			&m.SnapshotID,
			&m.AccountID,
			&m.BalanceDate,
			&m.OpeningBalance,
			&m.ClosingBalance,
			&m.DebitTotal,
			&m.CreditTotal,
			&m.TransactionCount,
			&m.CurrencyCode,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		modelSnapshots = append(modelSnapshots, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return mapping.ToDomainSnapshotSlice(modelSnapshots), nil
}
