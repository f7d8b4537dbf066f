package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

const transactionColumns = `transaction_id, reference_number, transaction_type, description, currency_code,
	total_amount, status, source_service, source_transaction_id, metadata,
	transaction_date, posted_at, reversed_at, reversal_reason, reversal_transaction_id,
	created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `entry_id, transaction_id, account_id, entry_type, amount, currency_code,
	description, status, entry_sequence, metadata, posted_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger
// transactions and their journal entries.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements the transaction repository facade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.LedgerTransaction, error) {
	var m models.LedgerTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.ReferenceNumber,
		&m.TransactionType,
		&m.Description,
		&m.CurrencyCode,
		&m.TotalAmount,
		&m.Status,
		&m.SourceService,
		&m.SourceTransactionID,
		&m.Metadata,
		&m.TransactionDate,
		&m.PostedAt,
		&m.ReversedAt,
		&m.ReversalReason,
		&m.ReversalTransactionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TransactionID,
		&m.AccountID,
		&m.EntryType,
		&m.Amount,
		&m.CurrencyCode,
		&m.Description,
		&m.Status,
		&m.EntrySequence,
		&m.Metadata,
		&m.PostedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// insertTransactionTx inserts the transaction row inside an open transaction.
func insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.LedgerTransaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := tx.Exec(ctx, query,
		m.TransactionID,
		m.ReferenceNumber,
		m.TransactionType,
		m.Description,
		m.CurrencyCode,
		m.TotalAmount,
		m.Status,
		m.SourceService,
		m.SourceTransactionID,
		m.Metadata,
		m.TransactionDate,
		m.PostedAt,
		m.ReversedAt,
		m.ReversalReason,
		m.ReversalTransactionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reference number %s is already in use", apperrors.ErrDuplicate, m.ReferenceNumber)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// insertEntriesTx batch-inserts journal entries inside an open transaction.
func insertEntriesTx(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		m := mapping.ToModelJournalEntry(entry)
		batch.Queue(query,
			m.EntryID,
			m.TransactionID,
			m.AccountID,
			m.EntryType,
			m.Amount,
			m.CurrencyCode,
			m.Description,
			m.Status,
			m.EntrySequence,
			m.Metadata,
			m.PostedAt,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal entry: %w", err)
		}
	}
	return nil
}

// SaveTransaction persists a new pending transaction and its draft entries
// in one database transaction. No account balances are touched.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.LedgerTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction commits

	if err := insertTransactionTx(ctx, tx, txn); err != nil {
		return err
	}
	if err := insertEntriesTx(ctx, tx, txn.Entries); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateTransactionDetails updates the mutable fields of a pending
// transaction. The guard on status makes a lost race visible as a conflict.
func (r *PgxTransactionRepository) UpdateTransactionDetails(ctx context.Context, txn domain.LedgerTransaction) error {
	m := mapping.ToModelTransaction(txn)

	query := `
		UPDATE ledger_transactions
		SET description = $2, metadata = $3, transaction_date = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1 AND status = $7;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.TransactionID,
		m.Description,
		m.Metadata,
		m.TransactionDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		string(domain.TransactionPending),
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", m.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is not pending", apperrors.ErrConflict, m.TransactionID)
	}
	return nil
}

// CorrectTransactionAmount overwrites the stored total with the figure
// recomputed from the entries. No status guard: validation examines posted
// transactions.
func (r *PgxTransactionRepository) CorrectTransactionAmount(ctx context.Context, transactionID string, totalAmount decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE ledger_transactions
		SET total_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, totalAmount, now, userID)
	if err != nil {
		return fmt.Errorf("failed to correct transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

// findEntriesForTransactions loads the entries of every listed transaction,
// grouped by transaction ID and ordered by entry sequence.
func (r *PgxTransactionRepository) findEntriesForTransactions(ctx context.Context, transactionIDs []string) (map[string][]domain.JournalEntry, error) {
	if len(transactionIDs) == 0 {
		return map[string][]domain.JournalEntry{}, nil
	}

	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, entry_sequence;
	`
	rows, err := r.Pool.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.JournalEntry, len(transactionIDs))
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		grouped[m.TransactionID] = append(grouped[m.TransactionID], mapping.ToDomainJournalEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	return grouped, nil
}

func (r *PgxTransactionRepository) findTransactionBy(ctx context.Context, condition string, arg interface{}) (*domain.LedgerTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE ` + condition + ` = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	entries, err := r.findEntriesForTransactions(ctx, []string{m.TransactionID})
	if err != nil {
		return nil, err
	}

	txn := mapping.ToDomainTransaction(m)
	txn.Entries = entries[m.TransactionID]
	return &txn, nil
}

// FindTransactionByID retrieves a transaction with its entries loaded.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.LedgerTransaction, error) {
	return r.findTransactionBy(ctx, "transaction_id", transactionID)
}

// FindTransactionByReference retrieves a transaction by its unique reference
// number with its entries loaded.
func (r *PgxTransactionRepository) FindTransactionByReference(ctx context.Context, referenceNumber string) (*domain.LedgerTransaction, error) {
	return r.findTransactionBy(ctx, "reference_number", referenceNumber)
}

// ListTransactions retrieves a filtered, paginated transaction list, newest
// first, with entries loaded and the total matching count.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.LedgerTransaction, int64, error) {
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

	if filter.Status != nil {
		addCondition("status = ", string(*filter.Status))
	}
	if filter.TransactionType != nil {
		addCondition("transaction_type = ", *filter.TransactionType)
	}
	if filter.CurrencyCode != nil {
		addCondition("currency_code = ", *filter.CurrencyCode)
	}
	if filter.SourceService != nil {
		addCondition("source_service = ", *filter.SourceService)
	}
	if filter.StartDate != nil {
		addCondition("transaction_date >= ", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("transaction_date <= ", *filter.EndDate)
	}
	if filter.AccountID != nil {
		addCondition("EXISTS (SELECT 1 FROM journal_entries e WHERE e.transaction_id = ledger_transactions.transaction_id AND e.account_id = ", *filter.AccountID)
		whereClause += ")"
	}

	countQuery := `SELECT COUNT(*) FROM ledger_transactions ` + whereClause + `;`
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	// Stable newest-first ordering; transaction_id breaks date ties.
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions ` + whereClause +
		` ORDER BY transaction_date DESC, created_at DESC, transaction_id`
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
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	modelTxns := make([]models.LedgerTransaction, 0, filter.PageSize)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	transactionIDs := make([]string, len(modelTxns))
	for i, m := range modelTxns {
		transactionIDs[i] = m.TransactionID
	}
	entriesByTxn, err := r.findEntriesForTransactions(ctx, transactionIDs)
	if err != nil {
		return nil, 0, err
	}

	txns := make([]domain.LedgerTransaction, len(modelTxns))
	for i, m := range modelTxns {
		txns[i] = mapping.ToDomainTransaction(m)
		txns[i].Entries = entriesByTxn[m.TransactionID]
	}

	return txns, total, nil
}

// FindEntriesByAccountID retrieves every journal entry referencing an
// account, created up to the optional cutoff, ordered by creation time.
func (r *PgxTransactionRepository) FindEntriesByAccountID(ctx context.Context, accountID string, until *time.Time) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE account_id = $1`
	args := []interface{}{accountID}
	if until != nil {
		args = append(args, *until)
		query += " AND created_at <= $2"
	}
	query += " ORDER BY created_at, entry_sequence;"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	return mapping.ToDomainJournalEntrySlice(modelEntries), nil
}

// lockAndCheckAccounts acquires row locks on every account carrying a
// balance delta and optionally re-verifies they are still active.
func lockAndCheckAccounts(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, requireActive bool) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	locked, err := findAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return err
	}
	for _, accountID := range accountIDs {
		account, found := locked[accountID]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if requireActive && !account.IsActive() {
			return fmt.Errorf("%w: account %s is not active", apperrors.ErrConflict, accountID)
		}
	}
	return nil
}

// ApplyPosting marks the transaction and its entries POSTED and applies the
// precomputed balance deltas, all inside one database transaction. Account
// rows are locked and re-checked first, so a concurrent close or a competing
// posting cannot slip between validation and apply.
func (r *PgxTransactionRepository) ApplyPosting(ctx context.Context, txn domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction commits

	if err := lockAndCheckAccounts(ctx, tx, balanceChanges, true); err != nil {
		return err
	}

	statusQuery := `
		UPDATE ledger_transactions
		SET status = $2, posted_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND status = $5;
	`
	tag, err := tx.Exec(ctx, statusQuery,
		txn.TransactionID,
		string(domain.TransactionPosted),
		now,
		userID,
		string(domain.TransactionPending),
	)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s posted: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is not pending", apperrors.ErrConflict, txn.TransactionID)
	}

	entryQuery := `
		UPDATE journal_entries
		SET status = $2, posted_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`
	if _, err := tx.Exec(ctx, entryQuery, txn.TransactionID, string(domain.EntryPosted), now, userID); err != nil {
		return fmt.Errorf("failed to mark entries posted for %s: %w", txn.TransactionID, err)
	}

	if err := updateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ApplyReversal persists the already-POSTED reversal transaction, flips the
// original to REVERSED with its reversal links, and applies the compensating
// balance deltas, all inside one database transaction. Closed accounts are
// allowed here: undoing posted impacts is what restores them to zero.
func (r *PgxTransactionRepository) ApplyReversal(ctx context.Context, original domain.LedgerTransaction, reversal domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored once the transaction commits

	if err := lockAndCheckAccounts(ctx, tx, balanceChanges, false); err != nil {
		return err
	}

	statusQuery := `
		UPDATE ledger_transactions
		SET status = $2, reversed_at = $3, reversal_reason = $4, reversal_transaction_id = $5,
		    last_updated_at = $3, last_updated_by = $6
		WHERE transaction_id = $1 AND status = $7;
	`
	tag, err := tx.Exec(ctx, statusQuery,
		original.TransactionID,
		string(domain.TransactionReversed),
		now,
		original.ReversalReason,
		reversal.TransactionID,
		userID,
		string(domain.TransactionPosted),
	)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s reversed: %w", original.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is not posted", apperrors.ErrConflict, original.TransactionID)
	}

	if err := insertTransactionTx(ctx, tx, reversal); err != nil {
		return err
	}
	if err := insertEntriesTx(ctx, tx, reversal.Entries); err != nil {
		return err
	}

	if err := updateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
