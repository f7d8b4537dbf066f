package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset           AccountType = "ASSET"
	Liability       AccountType = "LIABILITY"
	Equity          AccountType = "EQUITY"
	Revenue         AccountType = "REVENUE"
	Expense         AccountType = "EXPENSE"
	ContraAsset     AccountType = "CONTRA_ASSET"
	ContraLiability AccountType = "CONTRA_LIABILITY"
	ContraEquity    AccountType = "CONTRA_EQUITY"
)

// IsValid reports whether the account type is one of the known types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense, ContraAsset, ContraLiability, ContraEquity:
		return true
	}
	return false
}

// AccountStatus indicates the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
)

// Account represents an entry in the chart of accounts.
// Balances are mutated only by the posting and reversal flows, never directly.
type Account struct {
	AccountID          string            `json:"accountID"`          // Primary Key (UUID)
	AccountCode        string            `json:"accountCode"`        // Globally unique chart-of-accounts code
	Name               string            `json:"name"`               // User-defined name
	Description        string            `json:"description"`        // Nullable user description
	AccountType        AccountType       `json:"accountType"`        // Immutable after creation
	CurrencyCode       string            `json:"currencyCode"`       // Immutable after creation
	ParentAccountID    *string           `json:"parentAccountID,omitempty"` // Nullable self-reference for hierarchies
	Status             AccountStatus     `json:"status"`             // ACTIVE or CLOSED
	AllowManualEntries bool              `json:"allowManualEntries"` // Non-system callers may only post here when true
	IsSystemAccount    bool              `json:"isSystemAccount"`    // Platform-managed account marker
	CurrentBalance     decimal.Decimal   `json:"currentBalance"`     // Posted balance
	PendingBalance     decimal.Decimal   `json:"pendingBalance"`     // Posted + pending balance
	Metadata           map[string]string `json:"metadata,omitempty"`
	ClosedAt           *time.Time        `json:"closedAt,omitempty"`
	AuditFields
}

// IsActive reports whether the account can accept new entries.
func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}

// AccountBalance is the result of a point-in-time balance query, recomputed
// from journal entries rather than read from the stored balance.
type AccountBalance struct {
	AccountID           string          `json:"accountID"`
	AccountCode         string          `json:"accountCode"`
	AccountName         string          `json:"accountName"`
	AccountType         AccountType     `json:"accountType"`
	CurrencyCode        string          `json:"currencyCode"`
	CurrentBalance      decimal.Decimal `json:"currentBalance"`
	PendingBalance      decimal.Decimal `json:"pendingBalance"`
	AvailableBalance    decimal.Decimal `json:"availableBalance"`
	LastTransactionDate *time.Time      `json:"lastTransactionDate,omitempty"`
	TransactionCount    int64           `json:"transactionCount"`
}
