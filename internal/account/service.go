package account

import (
	"context"
	"time"
)

// Service exposes account lifecycle operations.
type Service struct {
	repo Repository
}

// NewService builds an account service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Open registers a new account with a zero balance and the default daily
// limits. The number must not already be in use.
func (s *Service) Open(ctx context.Context, number string) (Account, error) {
	exists, err := s.repo.Exists(ctx, number)
	if err != nil {
		return Account{}, err
	}
	if exists {
		return Account{}, ErrDuplicate
	}

	acc := New(number, time.Now().UTC())
	if err := s.repo.Create(ctx, acc); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Get retrieves an account by number.
func (s *Service) Get(ctx context.Context, number string) (Account, error) {
	return s.repo.Get(ctx, number)
}

// Close deactivates an account. Only accounts with a zero balance may be
// closed; the transition is permanent.
func (s *Service) Close(ctx context.Context, number string) error {
	acc, err := s.repo.Get(ctx, number)
	if err != nil {
		return err
	}
	if acc.Balance.IsPositive() {
		return ErrBalanceRemaining
	}

	acc.Status = StatusInactive
	acc.UpdatedAt = time.Now().UTC()
	return s.repo.Save(ctx, acc)
}
