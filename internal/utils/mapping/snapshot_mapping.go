package mapping

import (
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
)

// ToModelSnapshot converts a domain AccountBalanceSnapshot to its model form.
func ToModelSnapshot(d domain.AccountBalanceSnapshot) models.AccountBalanceSnapshot {
	return models.AccountBalanceSnapshot{
		SnapshotID:       d.SnapshotID,
		AccountID:        d.AccountID,
		BalanceDate:      d.BalanceDate,
		OpeningBalance:   d.OpeningBalance,
		ClosingBalance:   d.ClosingBalance,
		DebitTotal:       d.DebitTotal,
		CreditTotal:      d.CreditTotal,
		TransactionCount: d.TransactionCount,
		CurrencyCode:     d.CurrencyCode,
		CreatedAt:        d.CreatedAt,
	}
}

// ToDomainSnapshot converts a model AccountBalanceSnapshot to its domain form.
func ToDomainSnapshot(m models.AccountBalanceSnapshot) domain.AccountBalanceSnapshot {
	return domain.AccountBalanceSnapshot{
		SnapshotID:       m.SnapshotID,
		AccountID:        m.AccountID,
		BalanceDate:      m.BalanceDate,
		OpeningBalance:   m.OpeningBalance,
		ClosingBalance:   m.ClosingBalance,
		DebitTotal:       m.DebitTotal,
		CreditTotal:      m.CreditTotal,
		TransactionCount: m.TransactionCount,
		CurrencyCode:     m.CurrencyCode,
		CreatedAt:        m.CreatedAt,
	}
}

// ToDomainSnapshotSlice converts model snapshots to domain form.
func ToDomainSnapshotSlice(ms []models.AccountBalanceSnapshot) []domain.AccountBalanceSnapshot {
	ds := make([]domain.AccountBalanceSnapshot, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSnapshot(m)
	}
	return ds
}
