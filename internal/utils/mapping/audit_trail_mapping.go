package mapping

import (
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
)

// ToModelAuditTrailEntry converts a domain AuditTrailEntry to its model form.
func ToModelAuditTrailEntry(d domain.AuditTrailEntry) models.AuditTrailEntry {
	var transactionID, accountID *string
	if d.TransactionID != "" {
		id := d.TransactionID
		transactionID = &id
	}
	if d.AccountID != "" {
		id := d.AccountID
		accountID = &id
	}
	return models.AuditTrailEntry{
		AuditID:       d.AuditID,
		TransactionID: transactionID,
		AccountID:     accountID,
		Action:        d.Action,
		OldValue:      d.OldValue,
		NewValue:      d.NewValue,
		UserID:        d.UserID,
		IPAddress:     d.IPAddress,
		UserAgent:     d.UserAgent,
		Metadata:      d.Metadata,
		Timestamp:     d.Timestamp,
	}
}

// ToDomainAuditTrailEntry converts a model AuditTrailEntry to its domain form.
func ToDomainAuditTrailEntry(m models.AuditTrailEntry) domain.AuditTrailEntry {
	var transactionID, accountID string
	if m.TransactionID != nil {
		transactionID = *m.TransactionID
	}
	if m.AccountID != nil {
		accountID = *m.AccountID
	}
	return domain.AuditTrailEntry{
		AuditID:       m.AuditID,
		TransactionID: transactionID,
		AccountID:     accountID,
		Action:        m.Action,
		OldValue:      m.OldValue,
		NewValue:      m.NewValue,
		UserID:        m.UserID,
		IPAddress:     m.IPAddress,
		UserAgent:     m.UserAgent,
		Metadata:      m.Metadata,
		Timestamp:     m.Timestamp,
	}
}

// ToDomainAuditTrailEntrySlice converts model audit entries to domain form.
func ToDomainAuditTrailEntrySlice(ms []models.AuditTrailEntry) []domain.AuditTrailEntry {
	ds := make([]domain.AuditTrailEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditTrailEntry(m)
	}
	return ds
}
