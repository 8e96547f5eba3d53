package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type distinguishes the three supported money movements.
type Type string

const (
	TypeDeposit  Type = "DEPOSIT"
	TypeWithdraw Type = "WITHDRAW"
	TypeTransfer Type = "TRANSFER"
)

// Status of a recorded transaction. Failures abort before anything is
// written, so COMPLETED is the only value that ever reaches storage.
type Status string

const StatusCompleted Status = "COMPLETED"

// Transaction is an immutable record of a completed money movement. Exactly
// one of FromAccount/ToAccount is empty for deposits and withdrawals; both
// are set for transfers. Amount is the principal; Fee is zero except for
// transfers.
type Transaction struct {
	ID          string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	Type        Type
	Status      Status
	CreatedAt   time.Time
}

// DailySummary accumulates an account's withdrawal and transfer usage for
// one calendar day. Rows are created lazily with zero totals and only ever
// grow within the day.
type DailySummary struct {
	AccountNumber string
	Day           string
	TotalWithdraw decimal.Decimal
	TotalTransfer decimal.Decimal
	UpdatedAt     time.Time
}

// Page is one slice of an account's transaction history, newest first.
type Page struct {
	Transactions  []Transaction
	TotalPages    int
	TotalElements int64
	HasNext       bool
}

// NewID generates a transaction identifier: "TRX" followed by 8 uppercase
// hex characters. Uniqueness is ultimately enforced by the storage layer.
func NewID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRX" + strings.ToUpper(raw[:8])
}

// dayOf formats the calendar day a timestamp falls on, used as the daily
// summary key.
func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
