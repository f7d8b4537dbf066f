package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// accountColumns is the canonical column list scanned by scanAccount.
const accountColumns = `account_id, account_code, name, description, account_type, currency_code,
	parent_account_id, status, allow_manual_entries, is_system_account,
	current_balance, pending_balance, metadata, closed_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements the account repository facade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// scanAccount scans a single row in accountColumns order.
func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.AccountCode,
		&m.Name,
		&m.Description,
		&m.AccountType,
		&m.CurrencyCode,
		&m.ParentAccountID,
		&m.Status,
		&m.AllowManualEntries,
		&m.IsSystemAccount,
		&m.CurrentBalance,
		&m.PendingBalance,
		&m.Metadata,
		&m.ClosedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.AccountCode,
		m.Name,
		m.Description,
		m.AccountType,
		m.CurrencyCode,
		m.ParentAccountID,
		m.Status,
		m.AllowManualEntries,
		m.IsSystemAccount,
		m.CurrentBalance,
		m.PendingBalance,
		m.Metadata,
		m.ClosedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account code %s is already in use", apperrors.ErrDuplicate, m.AccountCode)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountByCode retrieves an account by its globally unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", accountCode, err)
	}

	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs are
// simply absent from the result map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

// ListAccounts retrieves a filtered, paginated account list ordered by
// account code, together with the total matching count.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error) {
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

	if filter.AccountType != nil {
		addCondition("account_type = ", string(*filter.AccountType))
	}
	if filter.Status != nil {
		addCondition("status = ", string(*filter.Status))
	}
	if filter.CurrencyCode != nil {
		addCondition("currency_code = ", *filter.CurrencyCode)
	}
	if filter.ParentAccountID != nil {
		addCondition("parent_account_id = ", *filter.ParentAccountID)
	}

	countQuery := `SELECT COUNT(*) FROM accounts ` + whereClause + `;`
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ` + whereClause + ` ORDER BY account_code`
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
		return nil, 0, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	modelAccounts := make([]models.Account, 0, filter.PageSize)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan account row: %w", err)
		}
		modelAccounts = append(modelAccounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating account rows: %w", err)
	}

	return mapping.ToDomainAccountSlice(modelAccounts), total, nil
}

// UpdateAccount updates mutable account details (name, description,
// manual-entry flag, metadata). Balances and immutable fields are untouched.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET name = $2, description = $3, allow_manual_entries = $4, metadata = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Description,
		m.AllowManualEntries,
		m.Metadata,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CloseAccount transitions an active account to CLOSED.
func (r *PgxAccountRepository) CloseAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = $2, closed_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1 AND status = $5;
	`
	tag, err := r.Pool.Exec(ctx, query, accountID, string(domain.AccountClosed), now, userID, string(domain.AccountActive))
	if err != nil {
		return fmt.Errorf("failed to close account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the account does not exist or it is already closed; the
		// service has checked both, so a zero count means a lost race.
		return fmt.Errorf("%w: account %s is not active", apperrors.ErrConflict, accountID)
	}
	return nil
}

// findAccountsByIDsForUpdate loads accounts inside a transaction with row
// locks held until commit. Used by the posting flow to serialize balance
// updates per account.
func findAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	// Locking in account_id order keeps concurrent postings that touch
	// overlapping account sets from deadlocking each other.
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for update: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountIDs))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	return accounts, nil
}

// updateAccountBalancesInTx applies the precomputed balance deltas inside the
// caller's transaction using a single batch round trip.
func updateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET current_balance = current_balance + $2,
		    pending_balance = pending_balance + $2,
		    last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for accountID, delta := range balanceChanges {
		batch.Queue(query, accountID, delta, now, userID)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range balanceChanges {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("failed to apply balance delta: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account disappeared during balance update", apperrors.ErrNotFound)
		}
	}
	return nil
}
