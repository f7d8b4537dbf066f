package accounting

import (
	"fmt"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceImpact returns the signed amount a journal entry applies to its
// account's balance, following the double-entry sign convention:
//
//	DEBIT  to ASSET/EXPENSE/CONTRA_LIABILITY/CONTRA_EQUITY -> +amount
//	CREDIT to ASSET/EXPENSE/CONTRA_LIABILITY/CONTRA_EQUITY -> -amount
//	DEBIT  to LIABILITY/EQUITY/REVENUE/CONTRA_ASSET        -> -amount
//	CREDIT to LIABILITY/EQUITY/REVENUE/CONTRA_ASSET        -> +amount
func BalanceImpact(accountType domain.AccountType, entryType domain.EntryType, amount decimal.Decimal) (decimal.Decimal, error) {
	isDebit := entryType == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense, domain.ContraLiability, domain.ContraEquity:
		if !isDebit {
			return amount.Neg(), nil
		}
		return amount, nil
	case domain.Liability, domain.Equity, domain.Revenue, domain.ContraAsset:
		if isDebit {
			return amount.Neg(), nil
		}
		return amount, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// NaturalBalanceIsDebit reports whether an account type carries its positive
// balance in the debit column of a trial balance.
func NaturalBalanceIsDebit(accountType domain.AccountType) bool {
	switch accountType {
	case domain.Asset, domain.Expense, domain.ContraLiability, domain.ContraEquity:
		return true
	default:
		return false
	}
}

// ValidateDoubleEntry checks that a set of journal entries forms a legal
// double-entry transaction: at least two entries, every amount positive, and
// debits equal to credits for every currency present. This is the single most
// important check in the ledger; a violating transaction is never stored.
func ValidateDoubleEntry(entries []domain.JournalEntry) error {
	if len(entries) < 2 {
		return fmt.Errorf("transaction must have at least two journal entries, got %d", len(entries))
	}

	debitTotals := make(map[string]decimal.Decimal)
	creditTotals := make(map[string]decimal.Decimal)

	for i := range entries {
		entry := &entries[i]
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("invalid journal entry at sequence %d: %w", i, err)
		}
		switch entry.EntryType {
		case domain.Debit:
			debitTotals[entry.CurrencyCode] = debitTotals[entry.CurrencyCode].Add(entry.Amount)
		case domain.Credit:
			creditTotals[entry.CurrencyCode] = creditTotals[entry.CurrencyCode].Add(entry.Amount)
		}
	}

	for currency, debits := range debitTotals {
		credits := creditTotals[currency]
		if !debits.Equal(credits) {
			return fmt.Errorf("debits (%s) do not equal credits (%s) for currency %s",
				debits.String(), credits.String(), currency)
		}
	}
	for currency, credits := range creditTotals {
		if _, ok := debitTotals[currency]; !ok && !credits.IsZero() {
			return fmt.Errorf("debits (0) do not equal credits (%s) for currency %s",
				credits.String(), currency)
		}
	}

	return nil
}

// CalculateTotalAmount derives a transaction's total as the sum of its debit
// amounts across all currencies.
func CalculateTotalAmount(entries []domain.JournalEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range entries {
		if entries[i].EntryType == domain.Debit {
			total = total.Add(entries[i].Amount)
		}
	}
	return total
}
