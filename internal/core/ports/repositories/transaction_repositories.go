package repositories

import (
	"context"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for ledger transactions and
// their journal entries.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its entries loaded,
	// ordered by entry sequence.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.LedgerTransaction, error)

	// FindTransactionByReference retrieves a transaction by its unique
	// reference number.
	FindTransactionByReference(ctx context.Context, referenceNumber string) (*domain.LedgerTransaction, error)

	// ListTransactions retrieves a filtered, paginated transaction list
	// (entries loaded), newest first, with the total matching count.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.LedgerTransaction, int64, error)

	// FindEntriesByAccountID retrieves every journal entry referencing an
	// account, created up to the optional cutoff, ordered by creation time.
	FindEntriesByAccountID(ctx context.Context, accountID string, until *time.Time) ([]domain.JournalEntry, error)
}

// TransactionWriter defines write operations for pending transactions.
type TransactionWriter interface {
	// SaveTransaction persists a new pending transaction with its draft
	// entries. No account balance changes. Returns apperrors.ErrDuplicate
	// when the reference number is already in use.
	SaveTransaction(ctx context.Context, txn domain.LedgerTransaction) error

	// UpdateTransactionDetails updates the mutable fields (description,
	// metadata) of a pending transaction.
	UpdateTransactionDetails(ctx context.Context, txn domain.LedgerTransaction) error

	// CorrectTransactionAmount overwrites a transaction's stored total with
	// the figure recomputed from its entries. Used by validation
	// auto-correct; works on any status because only posted transactions
	// are validated. The entries themselves are never altered.
	CorrectTransactionAmount(ctx context.Context, transactionID string, totalAmount decimal.Decimal, userID string, now time.Time) error
}

// TransactionPostingSupport defines the atomic posting operations. Each call
// is all-or-nothing: balance deltas, entry status flips and transaction
// status updates either all apply or none do.
type TransactionPostingSupport interface {
	// ApplyPosting marks the transaction and its entries POSTED and applies
	// the precomputed balance deltas to the referenced accounts in a single
	// atomic unit. The implementation re-checks that every account exists
	// and is active before mutating anything.
	ApplyPosting(ctx context.Context, txn domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// ApplyReversal persists the already-POSTED reversal transaction,
	// transitions the original to REVERSED with its reversal links, and
	// applies the compensating balance deltas, all in a single atomic unit.
	ApplyReversal(ctx context.Context, original domain.LedgerTransaction, reversal domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionPostingSupport
}
