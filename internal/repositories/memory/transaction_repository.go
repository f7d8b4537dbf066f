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
	"github.com/shopspring/decimal"
)

type memoryTransactionRepository struct {
	store *Store
}

var _ portsrepo.TransactionRepositoryFacade = (*memoryTransactionRepository)(nil)

// SaveTransaction stores a new pending transaction with its draft entries.
// No account balances change here.
func (r *memoryTransactionRepository) SaveTransaction(_ context.Context, txn domain.LedgerTransaction) error {
	r.store.txnMu.Lock()
	defer r.store.txnMu.Unlock()
	r.store.entryMu.Lock()
	defer r.store.entryMu.Unlock()

	if err := r.storeTransactionLocked(txn); err != nil {
		return err
	}
	return nil
}

// storeTransactionLocked inserts a transaction and its entries. Callers hold
// the transaction and entry write locks.
func (r *memoryTransactionRepository) storeTransactionLocked(txn domain.LedgerTransaction) error {
	if _, taken := r.store.referenceIdx[txn.ReferenceNumber]; taken {
		return fmt.Errorf("%w: reference number %s is already in use", apperrors.ErrDuplicate, txn.ReferenceNumber)
	}
	if _, exists := r.store.transactions[txn.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, txn.TransactionID)
	}

	stored := cloneTransaction(txn)
	entries := stored.Entries
	stored.Entries = nil // entries live in their own collection

	r.store.transactions[txn.TransactionID] = stored
	r.store.referenceIdx[txn.ReferenceNumber] = txn.TransactionID
	r.store.entries[txn.TransactionID] = entries
	return nil
}

// UpdateTransactionDetails updates the mutable fields of a pending
// transaction. Any other status is rejected.
func (r *memoryTransactionRepository) UpdateTransactionDetails(_ context.Context, txn domain.LedgerTransaction) error {
	r.store.txnMu.Lock()
	defer r.store.txnMu.Unlock()

	stored, ok := r.store.transactions[txn.TransactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if stored.Status != domain.TransactionPending {
		return fmt.Errorf("%w: transaction %s is not pending", apperrors.ErrConflict, txn.TransactionID)
	}

	stored.Description = txn.Description
	stored.Metadata = cloneMetadata(txn.Metadata)
	stored.LastUpdatedAt = txn.LastUpdatedAt
	stored.LastUpdatedBy = txn.LastUpdatedBy
	r.store.transactions[txn.TransactionID] = stored
	return nil
}

// CorrectTransactionAmount overwrites the stored total with the figure
// recomputed from the entries. No status guard: validation examines posted
// transactions.
func (r *memoryTransactionRepository) CorrectTransactionAmount(_ context.Context, transactionID string, totalAmount decimal.Decimal, userID string, now time.Time) error {
	r.store.txnMu.Lock()
	defer r.store.txnMu.Unlock()

	stored, ok := r.store.transactions[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}

	stored.TotalAmount = totalAmount
	stored.LastUpdatedAt = now
	stored.LastUpdatedBy = userID
	r.store.transactions[transactionID] = stored
	return nil
}

func (r *memoryTransactionRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.LedgerTransaction, error) {
	r.store.txnMu.RLock()
	defer r.store.txnMu.RUnlock()
	r.store.entryMu.RLock()
	defer r.store.entryMu.RUnlock()

	stored, ok := r.store.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn := r.withEntriesLocked(stored)
	return &txn, nil
}

func (r *memoryTransactionRepository) FindTransactionByReference(_ context.Context, referenceNumber string) (*domain.LedgerTransaction, error) {
	r.store.txnMu.RLock()
	defer r.store.txnMu.RUnlock()
	r.store.entryMu.RLock()
	defer r.store.entryMu.RUnlock()

	transactionID, ok := r.store.referenceIdx[referenceNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn := r.withEntriesLocked(r.store.transactions[transactionID])
	return &txn, nil
}

// withEntriesLocked clones a stored transaction and attaches its entries in
// sequence order. Callers hold at least the read locks on both collections.
func (r *memoryTransactionRepository) withEntriesLocked(stored domain.LedgerTransaction) domain.LedgerTransaction {
	txn := cloneTransaction(stored)
	txn.Entries = cloneEntries(r.store.entries[stored.TransactionID])
	sort.Slice(txn.Entries, func(i, j int) bool {
		return txn.Entries[i].EntrySequence < txn.Entries[j].EntrySequence
	})
	return txn
}

func (r *memoryTransactionRepository) ListTransactions(_ context.Context, filter portsrepo.TransactionFilter) ([]domain.LedgerTransaction, int64, error) {
	r.store.txnMu.RLock()
	defer r.store.txnMu.RUnlock()
	r.store.entryMu.RLock()
	defer r.store.entryMu.RUnlock()

	matched := make([]domain.LedgerTransaction, 0)
	for _, stored := range r.store.transactions {
		if r.transactionMatchesLocked(stored, filter) {
			matched = append(matched, stored)
		}
	}

	// Stable newest-first ordering; transaction ID breaks date ties.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.TransactionID < b.TransactionID
	})

	total := int64(len(matched))
	if filter.PageSize > 0 {
		start, end := pagination.SliceBounds(len(matched), filter.Page, filter.PageSize)
		matched = matched[start:end]
	}

	result := make([]domain.LedgerTransaction, len(matched))
	for i, stored := range matched {
		result[i] = r.withEntriesLocked(stored)
	}
	return result, total, nil
}

func (r *memoryTransactionRepository) transactionMatchesLocked(t domain.LedgerTransaction, filter portsrepo.TransactionFilter) bool {
	if filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.TransactionType != nil && t.TransactionType != *filter.TransactionType {
		return false
	}
	if filter.CurrencyCode != nil && t.CurrencyCode != *filter.CurrencyCode {
		return false
	}
	if filter.SourceService != nil && t.SourceService != *filter.SourceService {
		return false
	}
	if filter.StartDate != nil && t.TransactionDate.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && t.TransactionDate.After(*filter.EndDate) {
		return false
	}
	if filter.AccountID != nil {
		found := false
		for _, e := range r.store.entries[t.TransactionID] {
			if e.AccountID == *filter.AccountID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FindEntriesByAccountID retrieves every journal entry referencing an
// account, created up to the optional cutoff, oldest first.
func (r *memoryTransactionRepository) FindEntriesByAccountID(_ context.Context, accountID string, until *time.Time) ([]domain.JournalEntry, error) {
	r.store.entryMu.RLock()
	defer r.store.entryMu.RUnlock()

	matched := make([]domain.JournalEntry, 0)
	for _, entries := range r.store.entries {
		for _, e := range entries {
			if e.AccountID != accountID {
				continue
			}
			if until != nil && e.CreatedAt.After(*until) {
				continue
			}
			matched = append(matched, cloneEntry(e))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.EntrySequence < b.EntrySequence
	})
	return matched, nil
}

// checkAccountsLocked verifies that every account carrying a balance delta
// exists and, when required, is still active. Callers hold the account lock.
func (r *memoryTransactionRepository) checkAccountsLocked(balanceChanges map[string]decimal.Decimal, requireActive bool) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	for _, accountID := range accountIDs {
		account, found := r.store.accounts[accountID]
		if !found {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		if requireActive && !account.IsActive() {
			return fmt.Errorf("%w: account %s is not active", apperrors.ErrConflict, accountID)
		}
	}
	return nil
}

// applyBalanceChangesLocked adds each delta to the stored current and pending
// balances. Callers hold the account write lock and have already validated
// the accounts.
func (r *memoryTransactionRepository) applyBalanceChangesLocked(balanceChanges map[string]decimal.Decimal, userID string, now time.Time) {
	for accountID, delta := range balanceChanges {
		account := r.store.accounts[accountID]
		account.CurrentBalance = account.CurrentBalance.Add(delta)
		account.PendingBalance = account.PendingBalance.Add(delta)
		account.LastUpdatedAt = now
		account.LastUpdatedBy = userID
		r.store.accounts[accountID] = account
	}
}

// ApplyPosting marks the transaction and its entries POSTED and applies the
// precomputed balance deltas. All validation happens under the write locks
// before the first mutation, so a failure leaves the store untouched.
func (r *memoryTransactionRepository) ApplyPosting(_ context.Context, txn domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	r.store.txnMu.Lock()
	defer r.store.txnMu.Unlock()
	r.store.entryMu.Lock()
	defer r.store.entryMu.Unlock()
	r.store.accountMu.Lock()
	defer r.store.accountMu.Unlock()

	stored, ok := r.store.transactions[txn.TransactionID]
	if !ok || stored.Status != domain.TransactionPending {
		return fmt.Errorf("%w: transaction %s is not pending", apperrors.ErrConflict, txn.TransactionID)
	}
	if err := r.checkAccountsLocked(balanceChanges, true); err != nil {
		return err
	}

	postedAt := now
	stored.Status = domain.TransactionPosted
	stored.PostedAt = &postedAt
	stored.LastUpdatedAt = now
	stored.LastUpdatedBy = userID
	r.store.transactions[txn.TransactionID] = stored

	entries := r.store.entries[txn.TransactionID]
	for i := range entries {
		entries[i].Status = domain.EntryPosted
		entryPostedAt := now
		entries[i].PostedAt = &entryPostedAt
		entries[i].LastUpdatedAt = now
		entries[i].LastUpdatedBy = userID
	}
	r.store.entries[txn.TransactionID] = entries

	r.applyBalanceChangesLocked(balanceChanges, userID, now)
	return nil
}

// ApplyReversal stores the already-POSTED reversal transaction, flips the
// original to REVERSED with its reversal links, and applies the compensating
// balance deltas. Closed accounts are allowed here: undoing posted impacts
// is what restores them to zero.
func (r *memoryTransactionRepository) ApplyReversal(_ context.Context, original domain.LedgerTransaction, reversal domain.LedgerTransaction, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	r.store.txnMu.Lock()
	defer r.store.txnMu.Unlock()
	r.store.entryMu.Lock()
	defer r.store.entryMu.Unlock()
	r.store.accountMu.Lock()
	defer r.store.accountMu.Unlock()

	stored, ok := r.store.transactions[original.TransactionID]
	if !ok || stored.Status != domain.TransactionPosted {
		return fmt.Errorf("%w: transaction %s is not posted", apperrors.ErrConflict, original.TransactionID)
	}
	if _, taken := r.store.referenceIdx[reversal.ReferenceNumber]; taken {
		return fmt.Errorf("%w: reference number %s is already in use", apperrors.ErrDuplicate, reversal.ReferenceNumber)
	}
	if _, exists := r.store.transactions[reversal.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, reversal.TransactionID)
	}
	if err := r.checkAccountsLocked(balanceChanges, false); err != nil {
		return err
	}

	reversedAt := now
	stored.Status = domain.TransactionReversed
	stored.ReversedAt = &reversedAt
	stored.ReversalReason = original.ReversalReason
	stored.ReversalTransactionID = reversal.TransactionID
	stored.LastUpdatedAt = now
	stored.LastUpdatedBy = userID
	r.store.transactions[original.TransactionID] = stored

	if err := r.storeTransactionLocked(reversal); err != nil {
		return err
	}

	r.applyBalanceChangesLocked(balanceChanges, userID, now)
	return nil
}
