package accounting_test

import (
	"testing"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceImpact_SignConvention(t *testing.T) {
	amount := decimal.NewFromFloat(100.00)

	tests := []struct {
		name        string
		accountType domain.AccountType
		entryType   domain.EntryType
		want        decimal.Decimal
	}{
		{"debit asset increases", domain.Asset, domain.Debit, amount},
		{"credit asset decreases", domain.Asset, domain.Credit, amount.Neg()},
		{"debit expense increases", domain.Expense, domain.Debit, amount},
		{"credit expense decreases", domain.Expense, domain.Credit, amount.Neg()},
		{"debit contra-liability increases", domain.ContraLiability, domain.Debit, amount},
		{"credit contra-liability decreases", domain.ContraLiability, domain.Credit, amount.Neg()},
		{"debit contra-equity increases", domain.ContraEquity, domain.Debit, amount},
		{"credit contra-equity decreases", domain.ContraEquity, domain.Credit, amount.Neg()},
		{"debit liability decreases", domain.Liability, domain.Debit, amount.Neg()},
		{"credit liability increases", domain.Liability, domain.Credit, amount},
		{"debit equity decreases", domain.Equity, domain.Debit, amount.Neg()},
		{"credit equity increases", domain.Equity, domain.Credit, amount},
		{"debit revenue decreases", domain.Revenue, domain.Debit, amount.Neg()},
		{"credit revenue increases", domain.Revenue, domain.Credit, amount},
		{"debit contra-asset decreases", domain.ContraAsset, domain.Debit, amount.Neg()},
		{"credit contra-asset increases", domain.ContraAsset, domain.Credit, amount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.BalanceImpact(tt.accountType, tt.entryType, amount)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestBalanceImpact_UnknownType(t *testing.T) {
	_, err := accounting.BalanceImpact(domain.AccountType("BOGUS"), domain.Debit, decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown account type")
}

func TestValidateDoubleEntry(t *testing.T) {
	entry := func(et domain.EntryType, amount float64, currency string) domain.JournalEntry {
		return domain.JournalEntry{
			AccountID:    "acc",
			EntryType:    et,
			Amount:       decimal.NewFromFloat(amount),
			CurrencyCode: currency,
		}
	}

	t.Run("balanced single currency", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 100.00, "USD"),
			entry(domain.Credit, 100.00, "USD"),
		})
		assert.NoError(t, err)
	})

	t.Run("balanced split credit", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 100.00, "USD"),
			entry(domain.Credit, 60.00, "USD"),
			entry(domain.Credit, 40.00, "USD"),
		})
		assert.NoError(t, err)
	})

	t.Run("balanced per currency", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 100.00, "USD"),
			entry(domain.Credit, 100.00, "USD"),
			entry(domain.Debit, 50.00, "EUR"),
			entry(domain.Credit, 50.00, "EUR"),
		})
		assert.NoError(t, err)
	})

	t.Run("unbalanced rejected", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 100.00, "USD"),
			entry(domain.Credit, 50.00, "USD"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "do not equal")
	})

	t.Run("per currency mismatch rejected even when grand totals match", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 100.00, "USD"),
			entry(domain.Credit, 100.00, "EUR"),
		})
		assert.Error(t, err)
	})

	t.Run("single entry rejected", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 100.00, "USD"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least two")
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			entry(domain.Debit, 0, "USD"),
			entry(domain.Credit, 0, "USD"),
		})
		assert.Error(t, err)
	})

	t.Run("exact decimal comparison", func(t *testing.T) {
		d, _ := decimal.NewFromString("0.1")
		c1, _ := decimal.NewFromString("0.07")
		c2, _ := decimal.NewFromString("0.03")
		err := accounting.ValidateDoubleEntry([]domain.JournalEntry{
			{AccountID: "a", EntryType: domain.Debit, Amount: d, CurrencyCode: "USD"},
			{AccountID: "b", EntryType: domain.Credit, Amount: c1, CurrencyCode: "USD"},
			{AccountID: "c", EntryType: domain.Credit, Amount: c2, CurrencyCode: "USD"},
		})
		assert.NoError(t, err)
	})
}

func TestCalculateTotalAmount(t *testing.T) {
	entries := []domain.JournalEntry{
		{EntryType: domain.Debit, Amount: decimal.NewFromFloat(75.50), CurrencyCode: "USD"},
		{EntryType: domain.Debit, Amount: decimal.NewFromFloat(24.50), CurrencyCode: "USD"},
		{EntryType: domain.Credit, Amount: decimal.NewFromFloat(100.00), CurrencyCode: "USD"},
	}
	total := accounting.CalculateTotalAmount(entries)
	assert.True(t, decimal.NewFromFloat(100.00).Equal(total))
}

func TestNaturalBalanceIsDebit(t *testing.T) {
	assert.True(t, accounting.NaturalBalanceIsDebit(domain.Asset))
	assert.True(t, accounting.NaturalBalanceIsDebit(domain.Expense))
	assert.True(t, accounting.NaturalBalanceIsDebit(domain.ContraLiability))
	assert.True(t, accounting.NaturalBalanceIsDebit(domain.ContraEquity))
	assert.False(t, accounting.NaturalBalanceIsDebit(domain.Liability))
	assert.False(t, accounting.NaturalBalanceIsDebit(domain.Equity))
	assert.False(t, accounting.NaturalBalanceIsDebit(domain.Revenue))
	assert.False(t, accounting.NaturalBalanceIsDebit(domain.ContraAsset))
}
