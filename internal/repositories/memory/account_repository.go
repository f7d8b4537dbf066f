package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/apperrors"
	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
	"github.com/bankchen1/fo3-ledger-core/internal/utils/pagination"
)

type memoryAccountRepository struct {
	store *Store
}

var _ portsrepo.AccountRepositoryFacade = (*memoryAccountRepository)(nil)

// SaveAccount stores a new account, enforcing account code uniqueness.
func (r *memoryAccountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	r.store.accountMu.Lock()
	defer r.store.accountMu.Unlock()

	if _, taken := r.store.codeIdx[account.AccountCode]; taken {
		return fmt.Errorf("%w: account code %s is already in use", apperrors.ErrDuplicate, account.AccountCode)
	}
	if _, exists := r.store.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}

	r.store.accounts[account.AccountID] = cloneAccount(account)
	r.store.codeIdx[account.AccountCode] = account.AccountID
	return nil
}

func (r *memoryAccountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.store.accountMu.RLock()
	defer r.store.accountMu.RUnlock()

	stored, ok := r.store.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	account := cloneAccount(stored)
	return &account, nil
}

func (r *memoryAccountRepository) FindAccountByCode(_ context.Context, accountCode string) (*domain.Account, error) {
	r.store.accountMu.RLock()
	defer r.store.accountMu.RUnlock()

	accountID, ok := r.store.codeIdx[accountCode]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	account := cloneAccount(r.store.accounts[accountID])
	return &account, nil
}

func (r *memoryAccountRepository) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	r.store.accountMu.RLock()
	defer r.store.accountMu.RUnlock()

	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if stored, ok := r.store.accounts[id]; ok {
			result[id] = cloneAccount(stored)
		}
	}
	return result, nil
}

func (r *memoryAccountRepository) ListAccounts(_ context.Context, filter portsrepo.AccountFilter) ([]domain.Account, int64, error) {
	r.store.accountMu.RLock()
	matched := make([]domain.Account, 0, len(r.store.accounts))
	for _, stored := range r.store.accounts {
		if accountMatchesFilter(stored, filter) {
			matched = append(matched, cloneAccount(stored))
		}
	}
	r.store.accountMu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AccountCode < matched[j].AccountCode
	})

	total := int64(len(matched))
	if filter.PageSize > 0 {
		start, end := pagination.SliceBounds(len(matched), filter.Page, filter.PageSize)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func accountMatchesFilter(a domain.Account, filter portsrepo.AccountFilter) bool {
	if filter.AccountType != nil && a.AccountType != *filter.AccountType {
		return false
	}
	if filter.Status != nil && a.Status != *filter.Status {
		return false
	}
	if filter.CurrencyCode != nil && a.CurrencyCode != *filter.CurrencyCode {
		return false
	}
	if filter.ParentAccountID != nil {
		if a.ParentAccountID == nil || *a.ParentAccountID != *filter.ParentAccountID {
			return false
		}
	}
	return true
}

// UpdateAccount applies the mutable account fields. Type, currency, code and
// balances are left untouched regardless of what the caller passes in.
func (r *memoryAccountRepository) UpdateAccount(_ context.Context, account domain.Account) error {
	r.store.accountMu.Lock()
	defer r.store.accountMu.Unlock()

	stored, ok := r.store.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}

	stored.Name = account.Name
	stored.Description = account.Description
	stored.AllowManualEntries = account.AllowManualEntries
	stored.Metadata = cloneMetadata(account.Metadata)
	stored.LastUpdatedAt = account.LastUpdatedAt
	stored.LastUpdatedBy = account.LastUpdatedBy
	r.store.accounts[account.AccountID] = stored
	return nil
}

func (r *memoryAccountRepository) CloseAccount(_ context.Context, accountID string, userID string, now time.Time) error {
	r.store.accountMu.Lock()
	defer r.store.accountMu.Unlock()

	stored, ok := r.store.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if stored.Status != domain.AccountActive {
		return fmt.Errorf("%w: account %s is not active", apperrors.ErrConflict, accountID)
	}

	closedAt := now
	stored.Status = domain.AccountClosed
	stored.ClosedAt = &closedAt
	stored.LastUpdatedAt = now
	stored.LastUpdatedBy = userID
	r.store.accounts[accountID] = stored
	return nil
}
