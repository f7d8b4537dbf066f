package mapping

import (
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its model form.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		AccountID:     d.AccountID,
		EntryType:     string(d.EntryType),
		Amount:        d.Amount,
		CurrencyCode:  d.CurrencyCode,
		Description:   d.Description,
		Status:        string(d.Status),
		EntrySequence: d.EntrySequence,
		Metadata:      d.Metadata,
		PostedAt:      d.PostedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to its domain form.
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		EntryType:     domain.EntryType(m.EntryType),
		Amount:        m.Amount,
		CurrencyCode:  m.CurrencyCode,
		Description:   m.Description,
		Status:        domain.JournalEntryStatus(m.Status),
		EntrySequence: m.EntrySequence,
		Metadata:      m.Metadata,
		PostedAt:      m.PostedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntrySlice converts a slice of model JournalEntries to domain form.
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}
