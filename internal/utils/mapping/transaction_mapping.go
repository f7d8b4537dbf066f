package mapping

import (
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/bankchen1/fo3-ledger-core/internal/models"
)

// ToModelTransaction converts a domain LedgerTransaction to its model form.
// Entries are mapped separately; the transaction row does not carry them.
func ToModelTransaction(d domain.LedgerTransaction) models.LedgerTransaction {
	var reversalID *string
	if d.ReversalTransactionID != "" {
		id := d.ReversalTransactionID
		reversalID = &id
	}
	return models.LedgerTransaction{
		TransactionID:         d.TransactionID,
		ReferenceNumber:       d.ReferenceNumber,
		TransactionType:       d.TransactionType,
		Description:           d.Description,
		CurrencyCode:          d.CurrencyCode,
		TotalAmount:           d.TotalAmount,
		Status:                string(d.Status),
		SourceService:         d.SourceService,
		SourceTransactionID:   d.SourceTransactionID,
		Metadata:              d.Metadata,
		TransactionDate:       d.TransactionDate,
		PostedAt:              d.PostedAt,
		ReversedAt:            d.ReversedAt,
		ReversalReason:        d.ReversalReason,
		ReversalTransactionID: reversalID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model LedgerTransaction to its domain form.
func ToDomainTransaction(m models.LedgerTransaction) domain.LedgerTransaction {
	var reversalID string
	if m.ReversalTransactionID != nil {
		reversalID = *m.ReversalTransactionID
	}
	return domain.LedgerTransaction{
		TransactionID:         m.TransactionID,
		ReferenceNumber:       m.ReferenceNumber,
		TransactionType:       m.TransactionType,
		Description:           m.Description,
		CurrencyCode:          m.CurrencyCode,
		TotalAmount:           m.TotalAmount,
		Status:                domain.TransactionStatus(m.Status),
		SourceService:         m.SourceService,
		SourceTransactionID:   m.SourceTransactionID,
		Metadata:              m.Metadata,
		TransactionDate:       m.TransactionDate,
		PostedAt:              m.PostedAt,
		ReversedAt:            m.ReversedAt,
		ReversalReason:        m.ReversalReason,
		ReversalTransactionID: reversalID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}
