package repositories

import (
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
)

// Filter types shared by the repository implementations. Nil pointer fields
// mean "no constraint". Page/PageSize are normalized by the services before
// they reach a repository; a non-positive PageSize returns all matches.

// AccountFilter constrains ListAccounts queries.
type AccountFilter struct {
	AccountType     *domain.AccountType
	Status          *domain.AccountStatus
	CurrencyCode    *string
	ParentAccountID *string
	Page            int
	PageSize        int
}

// TransactionFilter constrains ListTransactions queries.
type TransactionFilter struct {
	AccountID       *string
	Status          *domain.TransactionStatus
	TransactionType *string
	CurrencyCode    *string
	SourceService   *string
	StartDate       *time.Time
	EndDate         *time.Time
	Page            int
	PageSize        int
}

// AuditTrailFilter constrains audit trail queries.
type AuditTrailFilter struct {
	TransactionID *string
	AccountID     *string
	UserID        *string
	Action        *string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}

// MetricsFilter constrains ledger metrics aggregation.
type MetricsFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	CurrencyCode *string
}

// TrialBalanceFilter constrains trial balance generation.
type TrialBalanceFilter struct {
	AsOf                time.Time
	CurrencyCode        *string
	AccountType         *domain.AccountType
	IncludeZeroBalances bool
}
