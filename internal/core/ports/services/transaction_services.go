package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// TransactionReaderSvc defines read operations for ledger transactions
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a transaction with its journal entries.
	GetTransactionByID(ctx context.Context, transactionID string, caller domain.CallerContext) (*domain.LedgerTransaction, error)

	// GetTransactionByReference retrieves a transaction by its reference number.
	GetTransactionByReference(ctx context.Context, referenceNumber string, caller domain.CallerContext) (*domain.LedgerTransaction, error)

	// ListTransactions retrieves a paginated, filtered list of transactions, newest first.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams, caller domain.CallerContext) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines write operations for ledger transactions
type TransactionWriterSvc interface {
	// RecordTransaction validates and persists a new balanced transaction.
	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, caller domain.CallerContext) (*domain.LedgerTransaction, error)

	// UpdateTransaction updates descriptive fields of a pending transaction.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, caller domain.CallerContext) (*domain.LedgerTransaction, error)
}

// TransactionPostingSvc defines the posting operation that applies balance impacts
type TransactionPostingSvc interface {
	// PostTransaction applies a pending transaction's balance impacts atomically.
	PostTransaction(ctx context.Context, transactionID string, caller domain.CallerContext) (*domain.LedgerTransaction, error)
}

// TransactionReversalSvc defines the reversal operation for posted transactions
type TransactionReversalSvc interface {
	// ReverseTransaction creates and posts a mirror-image reversal of a posted transaction.
	ReverseTransaction(ctx context.Context, transactionID string, req dto.ReverseTransactionRequest, caller domain.CallerContext) (*dto.ReverseTransactionResponse, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
// This is a facade for clients that need access to all operations
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionPostingSvc
	TransactionReversalSvc
}
