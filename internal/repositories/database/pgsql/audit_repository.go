package pgsql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auditColumns = `audit_id, transaction_id, account_id, action, old_value, new_value,
	user_id, ip_address, user_agent, metadata, timestamp`

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit trail.
// The table is append-only; this repository exposes no update or delete.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAuditRepository implements the audit repository facade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

func scanAuditEntry(row pgx.Row) (models.AuditTrailEntry, error) {
	var m models.AuditTrailEntry
	err := row.Scan(
		&m.AuditID,
		&m.TransactionID,
		&m.AccountID,
		&m.Action,
		&m.OldValue,
		&m.NewValue,
		&m.UserID,
		&m.IPAddress,
		&m.UserAgent,
		&m.Metadata,
		&m.Timestamp,
	)
	return m, err
}

// SaveAuditEntry appends a single immutable entry.
func (r *PgxAuditRepository) SaveAuditEntry(ctx context.Context, entry domain.AuditTrailEntry) error {
	m := mapping.ToModelAuditTrailEntry(entry)

	query := `
		INSERT INTO audit_trail (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AuditID,
		m.TransactionID,
		m.AccountID,
		m.Action,
		m.OldValue,
		m.NewValue,
		m.UserID,
		m.IPAddress,
		m.UserAgent,
		m.Metadata,
		m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit entry %s: %w", m.AuditID, err)
	}
	return nil
}

// ListAuditEntries retrieves a filtered, paginated slice of the trail,
// newest first, with the total matching count.
func (r *PgxAuditRepository) ListAuditEntries(ctx context.Context, filter portsrepo.AuditTrailFilter) ([]domain.AuditTrailEntry, int64, error) {
	whereClause := ""
	args := []interface{}{}

	addCondition := func(condition string, value interface{}) {
		args = append(args, value)
		placeholder := "$" + strconv.Itoa(len(args))
		if whereClause == "" {
			whereClause = "WHERE " + condition + placeholder
		} else {
			whereClause += " AND " + condition + placeholder
		}
	}

	if filter.TransactionID != nil {
		addCondition("transaction_id = ", *filter.TransactionID)
	}
	if filter.AccountID != nil {
		addCondition("account_id = ", *filter.AccountID)
	}
	if filter.UserID != nil {
		addCondition("user_id = ", *filter.UserID)
	}
	if filter.Action != nil {
		addCondition("action = ", *filter.Action)
	}
	if filter.StartDate != nil {
		addCondition("timestamp >= ", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("timestamp <= ", *filter.EndDate)
	}

	countQuery := `SELECT COUNT(*) FROM audit_trail ` + whereClause + `;`
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_trail ` + whereClause + ` ORDER BY timestamp DESC, audit_id`
	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		args = append(args, filter.PageSize)
		query += " LIMIT $" + strconv.Itoa(len(args))
		args = append(args, offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}
	query += ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	modelEntries := make([]models.AuditTrailEntry, 0, filter.PageSize)
	for rows.Next() {
		m, err := scanAuditEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry row: %w", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating audit entry rows: %w", err)
	}

	return mapping.ToDomainAuditTrailEntrySlice(modelEntries), total, nil
}
