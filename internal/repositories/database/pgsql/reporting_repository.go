package pgsql

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/accounting"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// booksBalancedTolerance is the maximum per-currency |debits - credits| over
// posted entries for the books to count as balanced.
var booksBalancedTolerance = decimal.RequireFromString("0.01")

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// Ensure reportingRepository implements the ReportingRepository interface
var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetTrialBalanceData computes one row per account by replaying posted
// journal entries up to the cutoff. Stored balances are never consulted; the
// trial balance is the independent check against them.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, filter portsrepo.TrialBalanceFilter) ([]domain.TrialBalanceEntry, error) {
	query := `
		SELECT
			a.account_id,
			a.account_code,
			a.name AS account_name,
			a.account_type,
			COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN e.amount ELSE 0 END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN e.entry_type = 'CREDIT' THEN e.amount ELSE 0 END), 0) AS total_credit
		FROM accounts a
		LEFT JOIN journal_entries e
			ON e.account_id = a.account_id
			AND e.status = 'POSTED'
			AND e.created_at <= $1
	`
	args := []interface{}{filter.AsOf}
	whereClause := ""
	if filter.CurrencyCode != nil {
		args = append(args, *filter.CurrencyCode)
		whereClause = " WHERE a.currency_code = $" + strconv.Itoa(len(args))
	}
	if filter.AccountType != nil {
		args = append(args, string(*filter.AccountType))
		if whereClause == "" {
			whereClause = " WHERE a.account_type = $" + strconv.Itoa(len(args))
		} else {
			whereClause += " AND a.account_type = $" + strconv.Itoa(len(args))
		}
	}
	query += whereClause + `
		GROUP BY a.account_id, a.account_code, a.name, a.account_type
		ORDER BY a.account_code;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceEntry{}
	for rows.Next() {
		var entry domain.TrialBalanceEntry
		var accountType string
		var totalDebit, totalCredit decimal.Decimal

		if err := rows.Scan(
			&entry.AccountID,
			&entry.AccountCode,
			&entry.AccountName,
			&accountType,
			&totalDebit,
			&totalCredit,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}
		entry.AccountType = domain.AccountType(accountType)

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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	return result, nil
}

// GetLedgerMetricsData aggregates account and transaction counts, per-type
// totals from stored balances, and the per-currency asset holdings. The
// balanced flag replays posted entries per currency, independent of the
// stored balances it sits next to.
func (r *reportingRepository) GetLedgerMetricsData(ctx context.Context, filter portsrepo.MetricsFilter) (*domain.LedgerMetrics, error) {
	metrics := &domain.LedgerMetrics{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		CurrencyBalances: map[string]decimal.Decimal{},
	}

	accountQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'ACTIVE')
		FROM accounts
	`
	accountArgs := []interface{}{}
	if filter.CurrencyCode != nil {
		accountArgs = append(accountArgs, *filter.CurrencyCode)
		accountQuery += " WHERE currency_code = $1"
	}
	if err := r.Pool.QueryRow(ctx, accountQuery+";", accountArgs...).Scan(&metrics.TotalAccounts, &metrics.ActiveAccounts); err != nil {
		return nil, fmt.Errorf("error counting accounts: %w", err)
	}

	txnQuery := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM ledger_transactions
	`
	txnWhere := ""
	txnArgs := []interface{}{}
	addTxnCondition := func(condition string, value interface{}) {
		txnArgs = append(txnArgs, value)
		placeholder := "$" + strconv.Itoa(len(txnArgs))
		if txnWhere == "" {
			txnWhere = " WHERE " + condition + placeholder
		} else {
			txnWhere += " AND " + condition + placeholder
		}
	}
	if filter.CurrencyCode != nil {
		addTxnCondition("currency_code = ", *filter.CurrencyCode)
	}
	if filter.StartDate != nil {
		addTxnCondition("transaction_date >= ", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addTxnCondition("transaction_date <= ", *filter.EndDate)
	}
	if err := r.Pool.QueryRow(ctx, txnQuery+txnWhere+";", txnArgs...).Scan(&metrics.TotalTransactions, &metrics.PendingTransactions); err != nil {
		return nil, fmt.Errorf("error counting transactions: %w", err)
	}

	balanceQuery := `
		SELECT account_type, currency_code, COALESCE(SUM(current_balance), 0)
		FROM accounts
	`
	balanceArgs := []interface{}{}
	if filter.CurrencyCode != nil {
		balanceArgs = append(balanceArgs, *filter.CurrencyCode)
		balanceQuery += " WHERE currency_code = $1"
	}
	balanceQuery += " GROUP BY account_type, currency_code;"

	rows, err := r.Pool.Query(ctx, balanceQuery, balanceArgs...)
	if err != nil {
		return nil, fmt.Errorf("error querying balance totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountType, currencyCode string
		var total decimal.Decimal
		if err := rows.Scan(&accountType, &currencyCode, &total); err != nil {
			return nil, fmt.Errorf("error scanning balance totals row: %w", err)
		}
		switch domain.AccountType(accountType) {
		case domain.Asset, domain.ContraLiability:
			metrics.TotalAssets = metrics.TotalAssets.Add(total)
		case domain.Liability, domain.ContraAsset:
			metrics.TotalLiabilities = metrics.TotalLiabilities.Add(total)
		case domain.Equity, domain.ContraEquity:
			metrics.TotalEquity = metrics.TotalEquity.Add(total)
		}
		// Asset holdings per currency for the dashboard.
		if domain.AccountType(accountType) == domain.Asset {
			metrics.CurrencyBalances[currencyCode] = metrics.CurrencyBalances[currencyCode].Add(total)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance totals rows: %w", err)
	}

	balancedQuery := `
		SELECT currency_code,
			COALESCE(SUM(CASE WHEN entry_type = 'DEBIT' THEN amount ELSE 0 END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN entry_type = 'CREDIT' THEN amount ELSE 0 END), 0) AS total_credit
		FROM journal_entries
		WHERE status = 'POSTED'
		GROUP BY currency_code;
	`
	balancedRows, err := r.Pool.Query(ctx, balancedQuery)
	if err != nil {
		return nil, fmt.Errorf("error querying posted entry totals: %w", err)
	}
	defer balancedRows.Close()

	metrics.BooksBalanced = true
	for balancedRows.Next() {
		var currencyCode string
		var totalDebit, totalCredit decimal.Decimal
		if err := balancedRows.Scan(&currencyCode, &totalDebit, &totalCredit); err != nil {
			return nil, fmt.Errorf("error scanning posted entry totals row: %w", err)
		}
		if totalDebit.Sub(totalCredit).Abs().GreaterThan(booksBalancedTolerance) {
			metrics.BooksBalanced = false
		}
	}
	if err := balancedRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted entry totals rows: %w", err)
	}

	return metrics, nil
}
