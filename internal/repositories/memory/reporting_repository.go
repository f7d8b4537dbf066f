package memory

import (
	"context"
	"sort"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// booksBalancedTolerance is the maximum per-currency |debits - credits| over
// posted entries for the books to count as balanced.
var booksBalancedTolerance = decimal.RequireFromString("0.01")

type memoryReportingRepository struct {
	store *Store
}

var _ portsrepo.ReportingRepository = (*memoryReportingRepository)(nil)

// GetTrialBalanceData computes one row per account by replaying posted
// journal entries up to the cutoff. Stored balances are never consulted; the
// trial balance is the independent check against them.
func (r *memoryReportingRepository) GetTrialBalanceData(_ context.Context, filter portsrepo.TrialBalanceFilter) ([]domain.TrialBalanceEntry, error) {
	r.store.entryMu.RLock()
	defer r.store.entryMu.RUnlock()
	r.store.accountMu.RLock()
	defer r.store.accountMu.RUnlock()

	debitTotals := make(map[string]decimal.Decimal)
	creditTotals := make(map[string]decimal.Decimal)
	for _, entries := range r.store.entries {
		for _, e := range entries {
			if e.Status != domain.EntryPosted || e.CreatedAt.After(filter.AsOf) {
				continue
			}
			if e.EntryType == domain.Debit {
				debitTotals[e.AccountID] = debitTotals[e.AccountID].Add(e.Amount)
			} else {
				creditTotals[e.AccountID] = creditTotals[e.AccountID].Add(e.Amount)
			}
		}
	}

	result := []domain.TrialBalanceEntry{}
	for _, account := range r.store.accounts {
		if filter.CurrencyCode != nil && account.CurrencyCode != *filter.CurrencyCode {
			continue
		}
		if filter.AccountType != nil && account.AccountType != *filter.AccountType {
			continue
		}

		entry := domain.TrialBalanceEntry{
			AccountID:   account.AccountID,
			AccountCode: account.AccountCode,
			AccountName: account.Name,
			AccountType: account.AccountType,
		}
		totalDebit := debitTotals[account.AccountID]
		totalCredit := creditTotals[account.AccountID]

		// The balance lands in the account's natural column; a negative
		// balance flips to the opposite column.
		if accounting.NaturalBalanceIsDebit(entry.AccountType) {
			entry.NetBalance = totalDebit.Sub(totalCredit)
			if entry.NetBalance.IsNegative() {
				entry.CreditBalance = entry.NetBalance.Abs()
			} else {
				entry.DebitBalance = entry.NetBalance
			}
		} else {
			entry.NetBalance = totalCredit.Sub(totalDebit)
			if entry.NetBalance.IsNegative() {
				entry.DebitBalance = entry.NetBalance.Abs()
			} else {
				entry.CreditBalance = entry.NetBalance
			}
		}

		if !filter.IncludeZeroBalances && entry.NetBalance.IsZero() {
			continue
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountCode < result[j].AccountCode
	})
	return result, nil
}

// GetLedgerMetricsData aggregates account and transaction counts, per-type
// totals from stored balances, and the per-currency asset holdings. The
// balanced flag replays posted entries per currency, independent of the
// stored balances it sits next to.
func (r *memoryReportingRepository) GetLedgerMetricsData(_ context.Context, filter portsrepo.MetricsFilter) (*domain.LedgerMetrics, error) {
	r.store.txnMu.RLock()
	defer r.store.txnMu.RUnlock()
	r.store.entryMu.RLock()
	defer r.store.entryMu.RUnlock()
	r.store.accountMu.RLock()
	defer r.store.accountMu.RUnlock()

	metrics := &domain.LedgerMetrics{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		CurrencyBalances: map[string]decimal.Decimal{},
	}

	for _, account := range r.store.accounts {
		if filter.CurrencyCode != nil && account.CurrencyCode != *filter.CurrencyCode {
			continue
		}
		metrics.TotalAccounts++
		if account.Status == domain.AccountActive {
			metrics.ActiveAccounts++
		}

		switch account.AccountType {
		case domain.Asset, domain.ContraLiability:
			metrics.TotalAssets = metrics.TotalAssets.Add(account.CurrentBalance)
		case domain.Liability, domain.ContraAsset:
			metrics.TotalLiabilities = metrics.TotalLiabilities.Add(account.CurrentBalance)
		case domain.Equity, domain.ContraEquity:
			metrics.TotalEquity = metrics.TotalEquity.Add(account.CurrentBalance)
		}
		// Asset holdings per currency for the dashboard.
		if account.AccountType == domain.Asset {
			metrics.CurrencyBalances[account.CurrencyCode] = metrics.CurrencyBalances[account.CurrencyCode].Add(account.CurrentBalance)
		}
	}

	for _, t := range r.store.transactions {
		if filter.CurrencyCode != nil && t.CurrencyCode != *filter.CurrencyCode {
			continue
		}
		if filter.StartDate != nil && t.TransactionDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && t.TransactionDate.After(*filter.EndDate) {
			continue
		}
		metrics.TotalTransactions++
		if t.Status == domain.TransactionPending {
			metrics.PendingTransactions++
		}
	}

	debitTotals := make(map[string]decimal.Decimal)
	creditTotals := make(map[string]decimal.Decimal)
	for _, entries := range r.store.entries {
		for _, e := range entries {
			if e.Status != domain.EntryPosted {
				continue
			}
			if e.EntryType == domain.Debit {
				debitTotals[e.CurrencyCode] = debitTotals[e.CurrencyCode].Add(e.Amount)
			} else {
				creditTotals[e.CurrencyCode] = creditTotals[e.CurrencyCode].Add(e.Amount)
			}
		}
	}
	metrics.BooksBalanced = true
	for currencyCode, totalDebit := range debitTotals {
		if totalDebit.Sub(creditTotals[currencyCode]).Abs().GreaterThan(booksBalancedTolerance) {
			metrics.BooksBalanced = false
		}
	}
	for currencyCode, totalCredit := range creditTotals {
		if _, seen := debitTotals[currencyCode]; seen {
			continue
		}
		if totalCredit.Abs().GreaterThan(booksBalancedTolerance) {
			metrics.BooksBalanced = false
		}
	}

	return metrics, nil
}
