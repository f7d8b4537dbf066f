package dto

import (
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating a new ledger account.
type CreateAccountRequest struct {
	AccountCode        string             `json:"accountCode" binding:"required,max=50"`
	Name               string             `json:"name" binding:"required,max=255"`
	Description        string             `json:"description" binding:"max=1000"`
	AccountType        domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE CONTRA_ASSET CONTRA_LIABILITY CONTRA_EQUITY"`
	CurrencyCode       string             `json:"currencyCode" binding:"required,len=3"`
	ParentAccountID    *string            `json:"parentAccountId,omitempty"`
	AllowManualEntries *bool              `json:"allowManualEntries,omitempty"`
	IsSystemAccount    bool               `json:"isSystemAccount,omitempty"`
	Metadata           map[string]string  `json:"metadata,omitempty"`
}

// UpdateAccountRequest defines the payload for updating mutable account fields.
// Account code, type and currency are immutable after creation.
type UpdateAccountRequest struct {
	Name               *string           `json:"name,omitempty" binding:"omitempty,max=255"`
	Description        *string           `json:"description,omitempty" binding:"omitempty,max=1000"`
	AllowManualEntries *bool             `json:"allowManualEntries,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CloseAccountRequest carries the optional reason recorded in the audit trail.
type CloseAccountRequest struct {
	Reason string `json:"reason,omitempty" binding:"max=500"`
}

// ListAccountsParams defines the supported query parameters for listing accounts.
type ListAccountsParams struct {
	AccountType     *domain.AccountType   `form:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE CONTRA_ASSET CONTRA_LIABILITY CONTRA_EQUITY"`
	Status          *domain.AccountStatus `form:"status" binding:"omitempty,oneof=ACTIVE CLOSED"`
	CurrencyCode    *string               `form:"currencyCode" binding:"omitempty,len=3"`
	ParentAccountID *string               `form:"parentAccountId"`
	Page            int                   `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize        int                   `form:"pageSize,default=20" binding:"omitempty,min=1,max=100"`
}

// GetBalanceParams controls pending balance inclusion and the as-of cutoff.
type GetBalanceParams struct {
	AsOf           *time.Time `form:"asOf" time_format:"2006-01-02T15:04:05Z07:00"`
	IncludePending bool       `form:"includePending,default=false"`
}

// AccountResponse is the API representation of a ledger account.
type AccountResponse struct {
	AccountID          string             `json:"accountId"`
	AccountCode        string             `json:"accountCode"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	AccountType        domain.AccountType `json:"accountType"`
	CurrencyCode       string             `json:"currencyCode"`
	ParentAccountID    *string            `json:"parentAccountId,omitempty"`
	Status             string             `json:"status"`
	AllowManualEntries bool               `json:"allowManualEntries"`
	IsSystemAccount    bool               `json:"isSystemAccount"`
	CurrentBalance     decimal.Decimal    `json:"currentBalance"`
	PendingBalance     decimal.Decimal    `json:"pendingBalance"`
	Metadata           map[string]string  `json:"metadata,omitempty"`
	ClosedAt           *time.Time         `json:"closedAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	LastUpdatedAt      time.Time          `json:"lastUpdatedAt"`
}

// ListAccountsResponse wraps a page of accounts with pagination details.
type ListAccountsResponse struct {
	Accounts   []AccountResponse `json:"accounts"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
}

// AccountBalanceResponse reports computed balances for a single account.
type AccountBalanceResponse struct {
	AccountID           string             `json:"accountId"`
	AccountCode         string             `json:"accountCode"`
	AccountName         string             `json:"accountName"`
	AccountType         domain.AccountType `json:"accountType"`
	CurrencyCode        string             `json:"currencyCode"`
	CurrentBalance      decimal.Decimal    `json:"currentBalance"`
	PendingBalance      decimal.Decimal    `json:"pendingBalance"`
	AvailableBalance    decimal.Decimal    `json:"availableBalance"`
	LastTransactionDate *time.Time         `json:"lastTransactionDate,omitempty"`
	TransactionCount    int64              `json:"transactionCount"`
}

// ToAccountResponse converts a domain account into its API representation.
func ToAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:          account.AccountID,
		AccountCode:        account.AccountCode,
		Name:               account.Name,
		Description:        account.Description,
		AccountType:        account.AccountType,
		CurrencyCode:       account.CurrencyCode,
		ParentAccountID:    account.ParentAccountID,
		Status:             string(account.Status),
		AllowManualEntries: account.AllowManualEntries,
		IsSystemAccount:    account.IsSystemAccount,
		CurrentBalance:     account.CurrentBalance,
		PendingBalance:     account.PendingBalance,
		Metadata:           account.Metadata,
		ClosedAt:           account.ClosedAt,
		CreatedAt:          account.CreatedAt,
		LastUpdatedAt:      account.LastUpdatedAt,
	}
}

// ToListAccountsResponse converts a page of domain accounts into the list payload.
func ToListAccountsResponse(accounts []domain.Account, totalCount int64, page, pageSize int) ListAccountsResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, ToAccountResponse(account))
	}
	return ListAccountsResponse{
		Accounts:   responses,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}
}

// ToAccountBalanceResponse converts a computed domain balance into its API representation.
func ToAccountBalanceResponse(balance domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:           balance.AccountID,
		AccountCode:         balance.AccountCode,
		AccountName:         balance.AccountName,
		AccountType:         balance.AccountType,
		CurrencyCode:        balance.CurrencyCode,
		CurrentBalance:      balance.CurrentBalance,
		PendingBalance:      balance.PendingBalance,
		AvailableBalance:    balance.AvailableBalance,
		LastTransactionDate: balance.LastTransactionDate,
		TransactionCount:    balance.TransactionCount,
	}
}
