package dto

import (
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalEntryInput is a single debit or credit line in a transaction request.
type JournalEntryInput struct {
	AccountID    string            `json:"accountId" binding:"required"`
	EntryType    domain.EntryType  `json:"entryType" binding:"required,oneof=DEBIT CREDIT"`
	Amount       decimal.Decimal   `json:"amount" binding:"required"`
	CurrencyCode string            `json:"currencyCode,omitempty" binding:"omitempty,len=3"`
	Description  string            `json:"description,omitempty" binding:"max=500"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RecordTransactionRequest defines the payload for recording a ledger transaction.
// Entries must balance per currency; autoPost applies balance impacts immediately.
type RecordTransactionRequest struct {
	ReferenceNumber     string              `json:"referenceNumber,omitempty" binding:"max=100"`
	TransactionType     string              `json:"transactionType" binding:"required,max=100"`
	Description         string              `json:"description,omitempty" binding:"max=1000"`
	CurrencyCode        string              `json:"currencyCode" binding:"required,len=3"`
	Entries             []JournalEntryInput `json:"entries" binding:"required,min=2,dive"`
	SourceService       string              `json:"sourceService,omitempty" binding:"max=100"`
	SourceTransactionID string              `json:"sourceTransactionId,omitempty" binding:"max=100"`
	TransactionDate     *time.Time          `json:"transactionDate,omitempty"`
	Metadata            map[string]string   `json:"metadata,omitempty"`
	AutoPost            bool                `json:"autoPost,omitempty"`
}

// UpdateTransactionRequest defines the mutable descriptive fields of a
// pending transaction. Entries and amounts cannot be changed after recording.
type UpdateTransactionRequest struct {
	Description     *string           `json:"description,omitempty" binding:"omitempty,max=1000"`
	TransactionDate *time.Time        `json:"transactionDate,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ReverseTransactionRequest carries the mandatory reason for a reversal.
type ReverseTransactionRequest struct {
	Reason      string `json:"reason" binding:"required,max=500"`
	Description string `json:"description,omitempty" binding:"max=1000"`
}

// ListTransactionsParams defines the supported query parameters for listing transactions.
type ListTransactionsParams struct {
	AccountID       *string                   `form:"accountId"`
	Status          *domain.TransactionStatus `form:"status" binding:"omitempty,oneof=PENDING POSTED REVERSED"`
	TransactionType *string                   `form:"transactionType"`
	CurrencyCode    *string                   `form:"currencyCode" binding:"omitempty,len=3"`
	SourceService   *string                   `form:"sourceService"`
	StartDate       *time.Time                `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate         *time.Time                `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
	Page            int                       `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize        int                       `form:"pageSize,default=20" binding:"omitempty,min=1,max=100"`
}

// JournalEntryResponse is the API representation of a journal entry line.
type JournalEntryResponse struct {
	EntryID       string            `json:"entryId"`
	TransactionID string            `json:"transactionId"`
	AccountID     string            `json:"accountId"`
	EntryType     domain.EntryType  `json:"entryType"`
	Amount        decimal.Decimal   `json:"amount"`
	CurrencyCode  string            `json:"currencyCode"`
	Description   string            `json:"description,omitempty"`
	Status        string            `json:"status"`
	EntrySequence int               `json:"entrySequence"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	PostedAt      *time.Time        `json:"postedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// TransactionResponse is the API representation of a ledger transaction with entries.
type TransactionResponse struct {
	TransactionID         string                 `json:"transactionId"`
	ReferenceNumber       string                 `json:"referenceNumber"`
	TransactionType       string                 `json:"transactionType"`
	Description           string                 `json:"description,omitempty"`
	CurrencyCode          string                 `json:"currencyCode"`
	TotalAmount           decimal.Decimal        `json:"totalAmount"`
	Status                string                 `json:"status"`
	Entries               []JournalEntryResponse `json:"entries"`
	SourceService         string                 `json:"sourceService,omitempty"`
	SourceTransactionID   string                 `json:"sourceTransactionId,omitempty"`
	Metadata              map[string]string      `json:"metadata,omitempty"`
	TransactionDate       time.Time              `json:"transactionDate"`
	PostedAt              *time.Time             `json:"postedAt,omitempty"`
	ReversedAt            *time.Time             `json:"reversedAt,omitempty"`
	ReversalReason        string                 `json:"reversalReason,omitempty"`
	ReversalTransactionID string                 `json:"reversalTransactionId,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
	CreatedBy             string                 `json:"createdBy"`
	LastUpdatedAt         time.Time              `json:"lastUpdatedAt"`
}

// ListTransactionsResponse wraps a page of transactions with pagination details.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	TotalCount   int64                 `json:"totalCount"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"pageSize"`
}

// ReverseTransactionResponse returns both sides of a completed reversal.
type ReverseTransactionResponse struct {
	OriginalTransaction TransactionResponse `json:"originalTransaction"`
	ReversalTransaction TransactionResponse `json:"reversalTransaction"`
}

// ToJournalEntryResponse converts a domain journal entry into its API representation.
func ToJournalEntryResponse(entry domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:       entry.EntryID,
		TransactionID: entry.TransactionID,
		AccountID:     entry.AccountID,
		EntryType:     entry.EntryType,
		Amount:        entry.Amount,
		CurrencyCode:  entry.CurrencyCode,
		Description:   entry.Description,
		Status:        string(entry.Status),
		EntrySequence: entry.EntrySequence,
		Metadata:      entry.Metadata,
		PostedAt:      entry.PostedAt,
		CreatedAt:     entry.CreatedAt,
	}
}

// ToTransactionResponse converts a domain transaction into its API representation.
func ToTransactionResponse(txn domain.LedgerTransaction) TransactionResponse {
	entries := make([]JournalEntryResponse, 0, len(txn.Entries))
	for _, entry := range txn.Entries {
		entries = append(entries, ToJournalEntryResponse(entry))
	}
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		ReferenceNumber:       txn.ReferenceNumber,
		TransactionType:       txn.TransactionType,
		Description:           txn.Description,
		CurrencyCode:          txn.CurrencyCode,
		TotalAmount:           txn.TotalAmount,
		Status:                string(txn.Status),
		Entries:               entries,
		SourceService:         txn.SourceService,
		SourceTransactionID:   txn.SourceTransactionID,
		Metadata:              txn.Metadata,
		TransactionDate:       txn.TransactionDate,
		PostedAt:              txn.PostedAt,
		ReversedAt:            txn.ReversedAt,
		ReversalReason:        txn.ReversalReason,
		ReversalTransactionID: txn.ReversalTransactionID,
		CreatedAt:             txn.CreatedAt,
		CreatedBy:             txn.CreatedBy,
		LastUpdatedAt:         txn.LastUpdatedAt,
	}
}

// ToListTransactionsResponse converts a page of domain transactions into the list payload.
func ToListTransactionsResponse(txns []domain.LedgerTransaction, totalCount int64, page, pageSize int) ListTransactionsResponse {
	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, ToTransactionResponse(txn))
	}
	return ListTransactionsResponse{
		Transactions: responses,
		TotalCount:   totalCount,
		Page:         page,
		PageSize:     pageSize,
	}
}

// ToReverseTransactionResponse pairs the updated original with its reversal.
func ToReverseTransactionResponse(original, reversal domain.LedgerTransaction) ReverseTransactionResponse {
	return ReverseTransactionResponse{
		OriginalTransaction: ToTransactionResponse(original),
		ReversalTransaction: ToTransactionResponse(reversal),
	}
}
