package repositories

import (
	"context"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its globally unique code.
	FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs
	// are simply absent from the result map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a filtered, paginated account list ordered by
	// account code, together with the total matching count.
	ListAccounts(ctx context.Context, filter AccountFilter) ([]domain.Account, int64, error)
}

// AccountWriter defines write operations for the chart of accounts.
// Balances are never written through this interface; they change only via
// TransactionPostingSupport.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when
	// the account code is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates mutable account details (name, description,
	// manual-entry flag, metadata).
	UpdateAccount(ctx context.Context, account domain.Account) error

	// CloseAccount transitions an account to CLOSED, recording who and when.
	CloseAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
