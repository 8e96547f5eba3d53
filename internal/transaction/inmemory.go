package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sango-bank/sango_bank/internal/account"
)

// InMemoryStore keeps accounts, daily summaries and the transaction log in
// process memory. It implements both the engine's Store and the account
// Repository so tests and the Postgres-less dev mode share one state. Units
// of work buffer their writes and apply them on Commit under the store
// mutex.
type InMemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]account.Account
	summaries map[string]DailySummary
	log       []Transaction
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		accounts:  make(map[string]account.Account),
		summaries: make(map[string]DailySummary),
	}
}

func summaryKey(number, day string) string {
	return number + "|" + day
}

// Begin opens a buffered unit of work.
func (s *InMemoryStore) Begin(_ context.Context) (Tx, error) {
	return &memTx{
		store:     s,
		accounts:  make(map[string]account.Account),
		summaries: make(map[string]DailySummary),
	}, nil
}

// History pages through the transaction log, newest first.
func (s *InMemoryStore) History(_ context.Context, number string, page, size int) (Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}

	s.mu.RLock()
	var matched []Transaction
	for _, txn := range s.log {
		if txn.FromAccount == number || txn.ToAccount == number {
			matched = append(matched, txn)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := page * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	return paginate(matched[start:end], total, page, size), nil
}

// Create inserts an account, implementing account.Repository.
func (s *InMemoryStore) Create(_ context.Context, acc account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[acc.Number]; exists {
		return account.ErrDuplicate
	}
	s.accounts[acc.Number] = acc
	return nil
}

// Get fetches an account, implementing account.Repository.
func (s *InMemoryStore) Get(_ context.Context, number string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[number]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

// Save replaces an account, implementing account.Repository.
func (s *InMemoryStore) Save(_ context.Context, acc account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.Number]; !ok {
		return account.ErrNotFound
	}
	s.accounts[acc.Number] = acc
	return nil
}

// Exists reports account presence, implementing account.Repository.
func (s *InMemoryStore) Exists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[number]
	return ok, nil
}

type memTx struct {
	store     *InMemoryStore
	accounts  map[string]account.Account
	summaries map[string]DailySummary
	appended  []Transaction
	done      bool
}

func (t *memTx) AccountForUpdate(_ context.Context, number string) (account.Account, error) {
	if acc, ok := t.accounts[number]; ok {
		return acc, nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	acc, ok := t.store.accounts[number]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

func (t *memTx) SaveAccount(_ context.Context, acc account.Account) error {
	t.accounts[acc.Number] = acc
	return nil
}

func (t *memTx) UsageForUpdate(_ context.Context, number, day string) (DailySummary, error) {
	key := summaryKey(number, day)
	if summary, ok := t.summaries[key]; ok {
		return summary, nil
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	if summary, ok := t.store.summaries[key]; ok {
		return summary, nil
	}
	return DailySummary{
		AccountNumber: number,
		Day:           day,
		TotalWithdraw: decimal.Zero,
		TotalTransfer: decimal.Zero,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

func (t *memTx) SaveUsage(_ context.Context, summary DailySummary) error {
	t.summaries[summaryKey(summary.AccountNumber, summary.Day)] = summary
	return nil
}

func (t *memTx) Append(_ context.Context, txn Transaction) error {
	t.appended = append(t.appended, txn)
	return nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for number, acc := range t.accounts {
		t.store.accounts[number] = acc
	}
	for key, summary := range t.summaries {
		t.store.summaries[key] = summary
	}
	t.store.log = append(t.store.log, t.appended...)
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	t.done = true
	return nil
}
