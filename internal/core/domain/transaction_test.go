package domain_test

import (
	"testing"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   domain.JournalEntry
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid debit entry",
			entry: domain.JournalEntry{
				EntryID:      "entry_1",
				AccountID:    "acc_1",
				EntryType:    domain.Debit,
				Amount:       decimal.NewFromFloat(100.00),
				CurrencyCode: "USD",
			},
			wantErr: false,
		},
		{
			name: "valid credit entry",
			entry: domain.JournalEntry{
				EntryID:      "entry_2",
				AccountID:    "acc_2",
				EntryType:    domain.Credit,
				Amount:       decimal.NewFromFloat(0.01),
				CurrencyCode: "EUR",
			},
			wantErr: false,
		},
		{
			name: "missing account",
			entry: domain.JournalEntry{
				EntryType:    domain.Debit,
				Amount:       decimal.NewFromFloat(10),
				CurrencyCode: "USD",
			},
			wantErr: true,
			errMsg:  "account ID",
		},
		{
			name: "zero amount",
			entry: domain.JournalEntry{
				AccountID:    "acc_1",
				EntryType:    domain.Debit,
				Amount:       decimal.Zero,
				CurrencyCode: "USD",
			},
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name: "negative amount",
			entry: domain.JournalEntry{
				AccountID:    "acc_1",
				EntryType:    domain.Credit,
				Amount:       decimal.NewFromFloat(-5),
				CurrencyCode: "USD",
			},
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name: "bad entry type",
			entry: domain.JournalEntry{
				AccountID:    "acc_1",
				EntryType:    domain.EntryType("TRANSFER"),
				Amount:       decimal.NewFromFloat(5),
				CurrencyCode: "USD",
			},
			wantErr: true,
			errMsg:  "invalid entry type",
		},
		{
			name: "missing currency",
			entry: domain.JournalEntry{
				AccountID: "acc_1",
				EntryType: domain.Debit,
				Amount:    decimal.NewFromFloat(5),
			},
			wantErr: true,
			errMsg:  "currency code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEntryType_Opposite(t *testing.T) {
	assert.Equal(t, domain.Credit, domain.Debit.Opposite())
	assert.Equal(t, domain.Debit, domain.Credit.Opposite())
}

func TestLedgerTransaction_StatusHelpers(t *testing.T) {
	txn := domain.LedgerTransaction{Status: domain.TransactionPending}
	assert.True(t, txn.IsPending())
	assert.False(t, txn.IsPosted())

	txn.Status = domain.TransactionPosted
	assert.False(t, txn.IsPending())
	assert.True(t, txn.IsPosted())

	txn.Status = domain.TransactionReversed
	assert.False(t, txn.IsPending())
	assert.False(t, txn.IsPosted())
}
