package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/middleware"
)

// economyService is the ledger facade other modules call. Every mutation
// follows validate -> durable-write -> cache-mirror -> respond: a failed
// durable write leaves the cache untouched.
type economyService struct {
	registry portssvc.CurrencyRegistrySvcFacade
	store    portssvc.LedgerStoreSvcFacade
	cache    portsrepo.BalanceCache
}

var _ portssvc.EconomySvcFacade = (*economyService)(nil)

// NewEconomyService creates the default economy provider.
func NewEconomyService(registry portssvc.CurrencyRegistrySvcFacade, store portssvc.LedgerStoreSvcFacade, cache portsrepo.BalanceCache) portssvc.EconomySvcFacade {
	return &economyService{registry: registry, store: store, cache: cache}
}

func (s *economyService) GetCurrencies() []string {
	currencies := s.registry.List()
	ids := make([]string, 0, len(currencies))
	for _, c := range currencies {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *economyService) GetDefaultCurrency() string {
	return s.registry.DefaultID()
}

func (s *economyService) GetCurrency(id string) (domain.Currency, bool) {
	return s.registry.Get(id)
}

// resolveCurrency maps "" to the default currency and rejects unknown ids.
func (s *economyService) resolveCurrency(currencyID string) (domain.Currency, error) {
	if currencyID == "" {
		currencyID = s.registry.DefaultID()
	}
	c, ok := s.registry.Get(currencyID)
	if !ok {
		return domain.Currency{}, fmt.Errorf("currency %q: %w", currencyID, apperrors.ErrUnknownCurrency)
	}
	return c, nil
}

func (s *economyService) HasAccount(ctx context.Context, entity uuid.UUID) (bool, error) {
	return s.store.HasAccount(ctx, entity)
}

func (s *economyService) CreateAccount(ctx context.Context, entity uuid.UUID, displayName string) (bool, error) {
	err := s.store.CreateAccount(ctx, entity, displayName)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *economyService) GetBalance(ctx context.Context, entity uuid.UUID, currencyID string) (float64, error) {
	c, err := s.resolveCurrency(currencyID)
	if err != nil {
		return 0, err
	}
	if s.cache.Has(entity, c.ID) {
		return s.cache.Get(entity, c.ID), nil
	}
	return s.store.GetBalance(ctx, entity, c.ID)
}

func (s *economyService) Has(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) (bool, error) {
	balance, err := s.GetBalance(ctx, entity, currencyID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

func (s *economyService) Deposit(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) domain.Result {
	c, err := s.resolveCurrency(currencyID)
	if err != nil {
		return domain.FailureResult(amount, "Unknown currency!")
	}
	amount = c.RoundAmount(amount)
	if amount <= 0 {
		return domain.FailureResult(amount, "Amount must be positive!")
	}

	has, err := s.store.HasAccount(ctx, entity)
	if err != nil {
		return s.storageFailure(ctx, err, amount)
	}
	if !has {
		// First deposit creates the account.
		if err := s.store.CreateAccount(ctx, entity, entity.String()); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			return s.storageFailure(ctx, err, amount)
		}
	}

	balance, err := s.store.Deposit(ctx, entity, c.ID, amount, "deposit")
	if err != nil {
		return s.storageFailure(ctx, err, amount)
	}

	s.cache.Set(entity, c.ID, balance)
	return domain.SuccessResult(amount, balance)
}

func (s *economyService) Withdraw(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) domain.Result {
	c, err := s.resolveCurrency(currencyID)
	if err != nil {
		return domain.FailureResult(amount, "Unknown currency!")
	}
	amount = c.RoundAmount(amount)
	if amount <= 0 {
		return domain.FailureResult(amount, "Amount must be positive!")
	}

	has, err := s.store.HasAccount(ctx, entity)
	if err != nil {
		return s.storageFailure(ctx, err, amount)
	}
	if !has {
		return domain.FailureResult(amount, "Account not found!")
	}

	balance, err := s.store.Withdraw(ctx, entity, c.ID, amount, "withdrawal")
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			current, balErr := s.store.GetBalance(ctx, entity, c.ID)
			if balErr != nil {
				return s.storageFailure(ctx, balErr, amount)
			}
			return domain.FailureResult(amount, fmt.Sprintf("Insufficient funds! You have %s", c.FormatAmount(current)))
		}
		return s.storageFailure(ctx, err, amount)
	}

	s.cache.Set(entity, c.ID, balance)
	return domain.SuccessResult(amount, balance)
}

func (s *economyService) SetBalance(ctx context.Context, entity uuid.UUID, currencyID string, amount float64) domain.Result {
	c, err := s.resolveCurrency(currencyID)
	if err != nil {
		return domain.FailureResult(amount, "Unknown currency!")
	}
	amount = c.RoundAmount(amount)
	if amount < 0 {
		return domain.FailureResult(amount, "Balance cannot be negative!")
	}

	has, err := s.store.HasAccount(ctx, entity)
	if err != nil {
		return s.storageFailure(ctx, err, amount)
	}
	if !has {
		return domain.FailureResult(amount, "Account not found!")
	}

	balance, err := s.store.SetBalance(ctx, entity, c.ID, amount, "balance set")
	if err != nil {
		return s.storageFailure(ctx, err, amount)
	}

	s.cache.Set(entity, c.ID, balance)
	return domain.SuccessResult(amount, balance)
}

// Transfer composes a withdrawal and a deposit. A deposit failure after a
// successful withdrawal triggers a compensating deposit back to the sender,
// so a FAILURE response may already have rolled the sender back.
func (s *economyService) Transfer(ctx context.Context, from, to uuid.UUID, currencyID string, amount float64) domain.Result {
	if from == to {
		return domain.FailureResult(amount, "Cannot transfer to the same account!")
	}

	withdrawal := s.Withdraw(ctx, from, currencyID, amount)
	if !withdrawal.Succeeded() {
		return withdrawal
	}

	deposit := s.Deposit(ctx, to, currencyID, amount)
	if deposit.Succeeded() {
		return deposit
	}

	// Compensate the sender. A failure here is infrastructure trouble and
	// leaves drift for SyncToCache and the diagnostics query to surface.
	compensation := s.Deposit(ctx, from, currencyID, withdrawal.Amount)
	if !compensation.Succeeded() {
		middleware.GetLoggerFromCtx(ctx).Error("Transfer compensation failed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
			slog.Float64("amount", withdrawal.Amount),
			slog.String("message", compensation.Message),
		)
	}
	return deposit
}

func (s *economyService) BankDeposit(ctx context.Context, bank string, currencyID string, amount float64) domain.Result {
	return domain.NotImplementedResult("Bank accounts are not supported")
}

func (s *economyService) BankWithdraw(ctx context.Context, bank string, currencyID string, amount float64) domain.Result {
	return domain.NotImplementedResult("Bank accounts are not supported")
}

func (s *economyService) BankBalance(ctx context.Context, bank string, currencyID string) domain.Result {
	return domain.NotImplementedResult("Bank accounts are not supported")
}

func (s *economyService) storageFailure(ctx context.Context, err error, amount float64) domain.Result {
	middleware.GetLoggerFromCtx(ctx).Error("Economy operation aborted by storage failure", slog.String("error", err.Error()))
	return domain.FailureResult(amount, "Storage error, try again later")
}
