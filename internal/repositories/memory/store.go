package memory

import (
	"sync"
	"time"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	portsrepo "github.com/bankchen1/fo3-ledger-core/internal/core/ports/repositories"
)

// Store is the process-local ledger state used by tests and single-node
// deployments. Every collection sits behind its own read-write lock.
//
// Operations that touch several collections acquire the locks in the fixed
// order transactions -> journal entries -> accounts -> audit -> snapshots
// and hold them only for the in-memory mutation, never across I/O. All
// validation happens before the first mutation, so a failed operation leaves
// every collection untouched.
type Store struct {
	txnMu        sync.RWMutex
	transactions map[string]domain.LedgerTransaction // entries held separately
	referenceIdx map[string]string                   // reference number -> transaction ID

	entryMu sync.RWMutex
	entries map[string][]domain.JournalEntry // keyed by transaction ID

	accountMu sync.RWMutex
	accounts  map[string]domain.Account
	codeIdx   map[string]string // account code -> account ID

	auditMu sync.RWMutex
	audit   []domain.AuditTrailEntry

	snapshotMu sync.RWMutex
	snapshots  map[string][]domain.AccountBalanceSnapshot // keyed by account ID
}

// NewStore creates an empty in-memory ledger store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]domain.LedgerTransaction),
		referenceIdx: make(map[string]string),
		entries:      make(map[string][]domain.JournalEntry),
		accounts:     make(map[string]domain.Account),
		codeIdx:      make(map[string]string),
		snapshots:    make(map[string][]domain.AccountBalanceSnapshot),
	}
}

// NewRepositoryProvider wires the in-memory repository set around a single
// shared store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	store := NewStore()
	return portsrepo.RepositoryProvider{
		AccountRepo:     &memoryAccountRepository{store: store},
		TransactionRepo: &memoryTransactionRepository{store: store},
		AuditRepo:       &memoryAuditRepository{store: store},
		SnapshotRepo:    &memorySnapshotRepository{store: store},
		ReportingRepo:   &memoryReportingRepository{store: store},
	}
}

// Clone helpers. Values handed across the repository boundary are deep
// copies; callers can never mutate stored state through shared maps or
// pointers.

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAccount(a domain.Account) domain.Account {
	a.ParentAccountID = cloneStringPtr(a.ParentAccountID)
	a.Metadata = cloneMetadata(a.Metadata)
	a.ClosedAt = cloneTimePtr(a.ClosedAt)
	return a
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Metadata = cloneMetadata(e.Metadata)
	e.PostedAt = cloneTimePtr(e.PostedAt)
	return e
}

func cloneEntries(entries []domain.JournalEntry) []domain.JournalEntry {
	if entries == nil {
		return nil
	}
	out := make([]domain.JournalEntry, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneTransaction(t domain.LedgerTransaction) domain.LedgerTransaction {
	t.Entries = cloneEntries(t.Entries)
	t.Metadata = cloneMetadata(t.Metadata)
	t.PostedAt = cloneTimePtr(t.PostedAt)
	t.ReversedAt = cloneTimePtr(t.ReversedAt)
	return t
}

func cloneAuditEntry(e domain.AuditTrailEntry) domain.AuditTrailEntry {
	e.Metadata = cloneMetadata(e.Metadata)
	return e
}
