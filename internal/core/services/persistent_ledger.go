package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/middleware"
)

const defaultTopLimit = 10

// ledgerStoreService fronts the durable repository with the account
// existence cache and registry-driven seeding.
type ledgerStoreService struct {
	repo     portsrepo.LedgerRepository
	cache    portsrepo.BalanceCache
	registry portssvc.CurrencyRegistrySvcFacade
	logTxns  bool

	// known holds uuids confirmed to have a durable account. Only positive
	// results are cached; accounts are never deleted so entries never go
	// stale.
	known sync.Map
}

var _ portssvc.LedgerStoreSvcFacade = (*ledgerStoreService)(nil)

// NewLedgerStoreService creates the durable-ledger service. logTxns gates
// the append-only audit log.
func NewLedgerStoreService(repo portsrepo.LedgerRepository, cache portsrepo.BalanceCache, registry portssvc.CurrencyRegistrySvcFacade, logTxns bool) portssvc.LedgerStoreSvcFacade {
	return &ledgerStoreService{
		repo:     repo,
		cache:    cache,
		registry: registry,
		logTxns:  logTxns,
	}
}

func (s *ledgerStoreService) HasAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := s.known.Load(id); ok {
		return true, nil
	}
	has, err := s.repo.HasAccount(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check account %s: %w", id, err)
	}
	if has {
		s.known.Store(id, struct{}{})
	}
	return has, nil
}

func (s *ledgerStoreService) CreateAccount(ctx context.Context, id uuid.UUID, displayName string) error {
	currencies := s.registry.List()
	seeds := make([]domain.Balance, 0, len(currencies))
	for _, c := range currencies {
		seeds = append(seeds, domain.Balance{UUID: id, CurrencyID: c.ID, Balance: c.StartingBalance})
	}

	account := domain.Account{UUID: id, DisplayName: displayName, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateAccount(ctx, account, seeds); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.known.Store(id, struct{}{})
			return err
		}
		s.logStorageError(ctx, err, "Failed to create account", slog.String("uuid", id.String()))
		return fmt.Errorf("create account %s: %w", id, err)
	}
	s.known.Store(id, struct{}{})

	middleware.GetLoggerFromCtx(ctx).Info("Account created",
		slog.String("uuid", id.String()),
		slog.String("display_name", displayName),
		slog.Int("seeded_currencies", len(seeds)),
	)
	return nil
}

func (s *ledgerStoreService) FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.repo.FindAccount(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find account %s: %w", id, err)
	}
	return account, nil
}

func (s *ledgerStoreService) GetBalance(ctx context.Context, id uuid.UUID, currencyID string) (float64, error) {
	balance, err := s.repo.GetBalance(ctx, id, currencyID)
	if err != nil {
		return 0, fmt.Errorf("get balance %s/%s: %w", id, currencyID, err)
	}
	return balance, nil
}

func (s *ledgerStoreService) ListBalances(ctx context.Context, id uuid.UUID) ([]domain.Balance, error) {
	balances, err := s.repo.ListBalances(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list balances %s: %w", id, err)
	}
	return balances, nil
}

// ensureRow lazily creates the balance row for currencies registered after
// the account was, seeded at the currency's starting balance.
func (s *ledgerStoreService) ensureRow(ctx context.Context, id uuid.UUID, currencyID string) error {
	starting := 0.0
	if c, ok := s.registry.Get(currencyID); ok {
		starting = c.StartingBalance
	}
	return s.repo.EnsureBalanceRow(ctx, id, currencyID, starting)
}

func (s *ledgerStoreService) Deposit(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("deposit amount must be positive: %w", apperrors.ErrValidation)
	}
	if err := s.ensureRow(ctx, id, currencyID); err != nil {
		s.logStorageError(ctx, err, "Failed to ensure balance row", slog.String("uuid", id.String()))
		return 0, fmt.Errorf("deposit %s/%s: %w", id, currencyID, err)
	}
	balance, err := s.repo.Deposit(ctx, id, currencyID, amount, description, s.logTxns)
	if err != nil {
		s.logStorageError(ctx, err, "Durable deposit failed", slog.String("uuid", id.String()))
		return 0, fmt.Errorf("deposit %s/%s: %w", id, currencyID, err)
	}
	return balance, nil
}

func (s *ledgerStoreService) Withdraw(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("withdrawal amount must be positive: %w", apperrors.ErrValidation)
	}
	if err := s.ensureRow(ctx, id, currencyID); err != nil {
		s.logStorageError(ctx, err, "Failed to ensure balance row", slog.String("uuid", id.String()))
		return 0, fmt.Errorf("withdraw %s/%s: %w", id, currencyID, err)
	}
	balance, err := s.repo.Withdraw(ctx, id, currencyID, amount, description, s.logTxns)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return 0, err
		}
		s.logStorageError(ctx, err, "Durable withdrawal failed", slog.String("uuid", id.String()))
		return 0, fmt.Errorf("withdraw %s/%s: %w", id, currencyID, err)
	}
	return balance, nil
}

func (s *ledgerStoreService) SetBalance(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string) (float64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("balance cannot be negative: %w", apperrors.ErrValidation)
	}
	if err := s.ensureRow(ctx, id, currencyID); err != nil {
		s.logStorageError(ctx, err, "Failed to ensure balance row", slog.String("uuid", id.String()))
		return 0, fmt.Errorf("set balance %s/%s: %w", id, currencyID, err)
	}
	balance, err := s.repo.SetBalance(ctx, id, currencyID, amount, description, s.logTxns)
	if err != nil {
		s.logStorageError(ctx, err, "Durable set-balance failed", slog.String("uuid", id.String()))
		return 0, fmt.Errorf("set balance %s/%s: %w", id, currencyID, err)
	}
	return balance, nil
}

func (s *ledgerStoreService) TopBalances(ctx context.Context, currencyID string, limit int) ([]domain.RankedBalance, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	ranked, err := s.repo.TopBalances(ctx, currencyID, limit)
	if err != nil {
		return nil, fmt.Errorf("top balances for %s: %w", currencyID, err)
	}
	return ranked, nil
}

func (s *ledgerStoreService) ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]domain.TransactionRecord, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	records, err := s.repo.ListTransactions(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", id, err)
	}
	return records, nil
}

func (s *ledgerStoreService) SyncToCache(ctx context.Context, id uuid.UUID) error {
	balances, err := s.repo.ListBalances(ctx, id)
	if err != nil {
		s.logStorageError(ctx, err, "Failed to load balances for cache sync", slog.String("uuid", id.String()))
		return fmt.Errorf("sync balances %s: %w", id, err)
	}
	for _, b := range balances {
		s.cache.Set(id, b.CurrencyID, b.Balance)
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Cache synced from durable store",
		slog.String("uuid", id.String()),
		slog.Int("balances", len(balances)),
	)
	return nil
}

// logStorageError logs infrastructure failures at error severity; business
// conditions never reach it.
func (s *ledgerStoreService) logStorageError(ctx context.Context, err error, msg string, attrs ...any) {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, attrs...)
	middleware.GetLoggerFromCtx(ctx).Error(msg, args...)
}
