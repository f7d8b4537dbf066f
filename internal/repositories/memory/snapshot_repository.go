package memory

import (
	"context"
	"sort"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
)

type memorySnapshotRepository struct {
	store *Store
}

var _ portsrepo.SnapshotRepositoryFacade = (*memorySnapshotRepository)(nil)

func (r *memorySnapshotRepository) SaveSnapshot(_ context.Context, snapshot domain.AccountBalanceSnapshot) error {
	r.store.snapshotMu.Lock()
	defer r.store.snapshotMu.Unlock()

	r.store.snapshots[snapshot.AccountID] = append(r.store.snapshots[snapshot.AccountID], snapshot)
	return nil
}

// ListSnapshots retrieves the snapshots for one account, optionally bounded
// by balance date, oldest first.
func (r *memorySnapshotRepository) ListSnapshots(_ context.Context, accountID string, startDate, endDate *time.Time) ([]domain.AccountBalanceSnapshot, error) {
	r.store.snapshotMu.RLock()
	defer r.store.snapshotMu.RUnlock()

	matched := make([]domain.AccountBalanceSnapshot, 0)
	for _, s := range r.store.snapshots[accountID] {
		if startDate != nil && s.BalanceDate.Before(*startDate) {
			continue
		}
		if endDate != nil && s.BalanceDate.After(*endDate) {
			continue
		}
		matched = append(matched, s)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].BalanceDate.Before(matched[j].BalanceDate)
	})
	return matched, nil
}
