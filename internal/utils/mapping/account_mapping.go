package mapping

import (
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:          d.AccountID,
		AccountCode:        d.AccountCode,
		Name:               d.Name,
		Description:        d.Description,
		AccountType:        string(d.AccountType),
		CurrencyCode:       d.CurrencyCode,
		ParentAccountID:    d.ParentAccountID,
		Status:             string(d.Status),
		AllowManualEntries: d.AllowManualEntries,
		IsSystemAccount:    d.IsSystemAccount,
		CurrentBalance:     d.CurrentBalance,
		PendingBalance:     d.PendingBalance,
		Metadata:           d.Metadata,
		ClosedAt:           d.ClosedAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:          m.AccountID,
		AccountCode:        m.AccountCode,
		Name:               m.Name,
		Description:        m.Description,
		AccountType:        domain.AccountType(m.AccountType),
		CurrencyCode:       m.CurrencyCode,
		ParentAccountID:    m.ParentAccountID,
		Status:             domain.AccountStatus(m.Status),
		AllowManualEntries: m.AllowManualEntries,
		IsSystemAccount:    m.IsSystemAccount,
		CurrentBalance:     m.CurrentBalance,
		PendingBalance:     m.PendingBalance,
		Metadata:           m.Metadata,
		ClosedAt:           m.ClosedAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
