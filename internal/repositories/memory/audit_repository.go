package memory

import (
	"context"
	"sort"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/pagination"
)

type memoryAuditRepository struct {
	store *Store
}

var _ portsrepo.AuditRepositoryFacade = (*memoryAuditRepository)(nil)

// SaveAuditEntry appends an entry to the trail. The slice is append-only;
// nothing in this package updates or removes audit records.
func (r *memoryAuditRepository) SaveAuditEntry(_ context.Context, entry domain.AuditTrailEntry) error {
	r.store.auditMu.Lock()
	defer r.store.auditMu.Unlock()

	r.store.audit = append(r.store.audit, cloneAuditEntry(entry))
	return nil
}

func (r *memoryAuditRepository) ListAuditEntries(_ context.Context, filter portsrepo.AuditTrailFilter) ([]domain.AuditTrailEntry, int64, error) {
	r.store.auditMu.RLock()
	matched := make([]domain.AuditTrailEntry, 0)
	for _, e := range r.store.audit {
		if auditMatchesFilter(e, filter) {
			matched = append(matched, cloneAuditEntry(e))
		}
	}
	r.store.auditMu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.AuditID < b.AuditID
	})

	total := int64(len(matched))
	if filter.PageSize > 0 {
		start, end := pagination.SliceBounds(len(matched), filter.Page, filter.PageSize)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func auditMatchesFilter(e domain.AuditTrailEntry, filter portsrepo.AuditTrailFilter) bool {
	if filter.TransactionID != nil && e.TransactionID != *filter.TransactionID {
		return false
	}
	if filter.AccountID != nil && e.AccountID != *filter.AccountID {
		return false
	}
	if filter.UserID != nil && e.UserID != *filter.UserID {
		return false
	}
	if filter.Action != nil && e.Action != *filter.Action {
		return false
	}
	if filter.StartDate != nil && e.Timestamp.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && e.Timestamp.After(*filter.EndDate) {
		return false
	}
	return true
}
