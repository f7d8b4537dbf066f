package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus indicates the state of a ledger transaction.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionPosted   TransactionStatus = "POSTED"
	TransactionReversed TransactionStatus = "REVERSED"
)

// EntryType indicates whether a journal entry is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// IsValid reports whether the entry type is DEBIT or CREDIT.
func (t EntryType) IsValid() bool {
	return t == Debit || t == Credit
}

// Opposite returns the reversing direction for an entry type.
func (t EntryType) Opposite() EntryType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// JournalEntryStatus mirrors the owning transaction's lifecycle.
type JournalEntryStatus string

const (
	EntryDraft  JournalEntryStatus = "DRAFT"
	EntryPosted JournalEntryStatus = "POSTED"
)

// JournalEntry represents a single debit or credit line within a ledger
// transaction, affecting exactly one account. Amounts are always positive;
// direction is carried by EntryType, never by sign.
type JournalEntry struct {
	EntryID       string             `json:"entryID"`       // Primary Key (UUID)
	TransactionID string             `json:"transactionID"` // FK -> LedgerTransaction (Not Null)
	AccountID     string             `json:"accountID"`     // FK -> Account (Not Null)
	EntryType     EntryType          `json:"entryType"`     // DEBIT or CREDIT
	Amount        decimal.Decimal    `json:"amount"`        // Positive exact decimal
	CurrencyCode  string             `json:"currencyCode"`  // Currency the amount is denominated in
	Description   string             `json:"description"`   // Nullable line description
	Status        JournalEntryStatus `json:"status"`        // DRAFT while pending, POSTED once applied
	EntrySequence int                `json:"entrySequence"` // Ordering within the transaction
	Metadata      map[string]string  `json:"metadata,omitempty"`
	PostedAt      *time.Time         `json:"postedAt,omitempty"`
	AuditFields
}

// Validate checks the structural invariants of a single entry.
func (e *JournalEntry) Validate() error {
	if e.AccountID == "" {
		return fmt.Errorf("journal entry requires an account ID")
	}
	if !e.EntryType.IsValid() {
		return fmt.Errorf("invalid entry type: %s", e.EntryType)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("entry amount must be positive, got %s", e.Amount.String())
	}
	if e.CurrencyCode == "" {
		return fmt.Errorf("journal entry requires a currency code")
	}
	return nil
}

// LedgerTransaction represents a balanced set of journal entries recorded as
// a single financial event. For every currency present, debit amounts equal
// credit amounts; an unbalanced transaction is never stored.
type LedgerTransaction struct {
	TransactionID         string            `json:"transactionID"`   // Primary Key (UUID)
	ReferenceNumber       string            `json:"referenceNumber"` // Globally unique, used as the idempotency key
	TransactionType       string            `json:"transactionType"` // Free-form tag (deposit, withdrawal, fee, ...)
	Description           string            `json:"description"`
	CurrencyCode          string            `json:"currencyCode"` // Primary currency of the transaction
	TotalAmount           decimal.Decimal   `json:"totalAmount"`  // Sum of debit amounts
	Status                TransactionStatus `json:"status"`       // PENDING -> POSTED -> REVERSED
	Entries               []JournalEntry    `json:"entries"`
	SourceService         string            `json:"sourceService"`         // Originating collaborator, if any
	SourceTransactionID   string            `json:"sourceTransactionID"`   // Provenance reference in the source system
	Metadata              map[string]string `json:"metadata,omitempty"`
	TransactionDate       time.Time         `json:"transactionDate"`
	PostedAt              *time.Time        `json:"postedAt,omitempty"`
	ReversedAt            *time.Time        `json:"reversedAt,omitempty"`
	ReversalReason        string            `json:"reversalReason,omitempty"`
	ReversalTransactionID string            `json:"reversalTransactionID,omitempty"` // The compensating transaction, once reversed
	AuditFields
}

// IsPending reports whether the transaction can still be modified or posted.
func (t *LedgerTransaction) IsPending() bool {
	return t.Status == TransactionPending
}

// IsPosted reports whether the transaction has been applied to balances.
func (t *LedgerTransaction) IsPosted() bool {
	return t.Status == TransactionPosted
}
