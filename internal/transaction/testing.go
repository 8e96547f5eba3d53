package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sango-bank/sango_bank/internal/account"
)

// SeedAccount is a test helper that installs an active account with the
// given balance and limits in an in-memory store.
func SeedAccount(s *InMemoryStore, number string, balance, withdrawLimit, transferLimit decimal.Decimal) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[number] = account.Account{
		Number:             number,
		Balance:            balance,
		DailyWithdrawLimit: withdrawLimit,
		DailyTransferLimit: transferLimit,
		Status:             account.StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Usage is a test helper that reads back the stored daily totals for an
// account and day.
func Usage(s *InMemoryStore, number, day string) (DailySummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[summaryKey(number, day)]
	return summary, ok
}
