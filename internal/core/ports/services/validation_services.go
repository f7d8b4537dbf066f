package services

import (
	"context"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/dto"
)

// ReconciliationSvc defines balance reconciliation operations
type ReconciliationSvc interface {
	// ReconcileAccounts recomputes balances from journal entries and compares
	// them against stored balances, reporting every variance found.
	ReconcileAccounts(ctx context.Context, req dto.ReconcileAccountsRequest, caller domain.CallerContext) (*dto.ReconcileAccountsResponse, error)
}

// BookkeepingValidatorSvc defines ledger-wide integrity checks
type BookkeepingValidatorSvc interface {
	// ValidateBookkeeping checks double-entry balance, amount consistency and
	// trial balance equality across posted transactions.
	ValidateBookkeeping(ctx context.Context, req dto.ValidateBookkeepingRequest, caller domain.CallerContext) (*dto.ValidateBookkeepingResponse, error)
}

// ValidationSvcFacade combines reconciliation and bookkeeping validation
type ValidationSvcFacade interface {
	ReconciliationSvc
	BookkeepingValidatorSvc
}
