package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an account. Accounts move from active to
// inactive exactly once and never back.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Account is a customer account identified by its externally assigned
// 10-digit account number. Balance and the daily limits are exact decimals;
// the limits are fixed at creation.
type Account struct {
	Number             string
	Balance            decimal.Decimal
	DailyWithdrawLimit decimal.Decimal
	DailyTransferLimit decimal.Decimal
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Default daily limits applied when an account is opened.
var (
	DefaultDailyWithdrawLimit = decimal.NewFromInt(1_000_000)
	DefaultDailyTransferLimit = decimal.NewFromInt(3_000_000)
)

// New returns a freshly opened account with a zero balance and default limits.
func New(number string, now time.Time) Account {
	return Account{
		Number:             number,
		Balance:            decimal.Zero,
		DailyWithdrawLimit: DefaultDailyWithdrawLimit,
		DailyTransferLimit: DefaultDailyTransferLimit,
		Status:             StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
