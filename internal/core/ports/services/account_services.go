package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// AccountReaderSvc defines read operations for the account registry
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string, caller domain.CallerContext) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its human-readable account code.
	GetAccountByCode(ctx context.Context, accountCode string, caller domain.CallerContext) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs in one call.
	GetAccountsByIDs(ctx context.Context, accountIDs []string, caller domain.CallerContext) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated, filtered list of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams, caller domain.CallerContext) (*dto.ListAccountsResponse, error)

	// GetAccountBalance computes current, pending and available balances by
	// replaying the account's journal entries.
	GetAccountBalance(ctx context.Context, accountID string, params dto.GetBalanceParams, caller domain.CallerContext) (*domain.AccountBalance, error)
}

// AccountWriterSvc defines write operations for the account registry
type AccountWriterSvc interface {
	// CreateAccount persists a new account with a zero opening balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, caller domain.CallerContext) (*domain.Account, error)

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, caller domain.CallerContext) (*domain.Account, error)

	// CloseAccount marks a zero-balance account as closed.
	CloseAccount(ctx context.Context, accountID string, req dto.CloseAccountRequest, caller domain.CallerContext) error
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
