package pgsql

import (
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the Postgres-backed repository set.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
		SnapshotRepo:    newPgxSnapshotRepository(dbPool),
		ReportingRepo:   newReportingRepository(dbPool),
	}
}
