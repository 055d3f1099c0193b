package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/adapters/database/sqlite"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T) *sqlite.LedgerRepository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})
	return repo
}

func createTestAccount(t *testing.T, repo *sqlite.LedgerRepository, seeds ...domain.Balance) uuid.UUID {
	t.Helper()
	id := uuid.New()
	for i := range seeds {
		seeds[i].UUID = id
	}
	account := domain.Account{UUID: id, DisplayName: "Alice", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateAccount(context.Background(), account, seeds))
	return id
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}

func TestCreateAndFindAccount(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 100})

	has, err := repo.HasAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, has)

	account, err := repo.FindAccount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, account.UUID)
	assert.Equal(t, "Alice", account.DisplayName)
	assert.False(t, account.CreatedAt.IsZero())

	balance, err := repo.GetBalance(ctx, id, "coins")
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)
}

func TestFindAccount_NotFound(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.FindAccount(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	has, err := repo.HasAccount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo)

	err := repo.CreateAccount(ctx, domain.Account{UUID: id, DisplayName: "Alice", CreatedAt: time.Now().UTC()}, nil)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestGetBalance_MissingRowIsZero(t *testing.T) {
	repo := openTestRepo(t)
	id := createTestAccount(t, repo)

	balance, err := repo.GetBalance(context.Background(), id, "gems")
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestEnsureBalanceRow(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 40})

	// New currency gets its starting balance.
	require.NoError(t, repo.EnsureBalanceRow(ctx, id, "gems", 5))
	balance, err := repo.GetBalance(ctx, id, "gems")
	require.NoError(t, err)
	assert.Equal(t, 5.0, balance)

	// Existing rows are untouched.
	require.NoError(t, repo.EnsureBalanceRow(ctx, id, "coins", 999))
	balance, err = repo.GetBalance(ctx, id, "coins")
	require.NoError(t, err)
	assert.Equal(t, 40.0, balance)
}

func TestDepositAndWithdraw(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 100})

	balance, err := repo.Deposit(ctx, id, "coins", 25, "quest reward", true)
	require.NoError(t, err)
	assert.Equal(t, 125.0, balance)

	balance, err = repo.Withdraw(ctx, id, "coins", 125, "shop purchase", true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)

	_, err = repo.Withdraw(ctx, id, "coins", 0.01, "overdraw", true)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
}

func TestWithdraw_ExactBalanceAllowed(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 50})

	balance, err := repo.Withdraw(ctx, id, "coins", 50, "", false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestSetBalance_UpsertsRow(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo)

	// No pre-existing row: SetBalance creates one.
	balance, err := repo.SetBalance(ctx, id, "gems", 12, "admin set", true)
	require.NoError(t, err)
	assert.Equal(t, 12.0, balance)

	balance, err = repo.SetBalance(ctx, id, "gems", 3, "admin set", true)
	require.NoError(t, err)
	assert.Equal(t, 3.0, balance)
}

func TestListBalances(t *testing.T) {
	repo := openTestRepo(t)
	id := createTestAccount(t, repo,
		domain.Balance{CurrencyID: "gems", Balance: 3},
		domain.Balance{CurrencyID: "coins", Balance: 100},
	)

	balances, err := repo.ListBalances(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "coins", balances[0].CurrencyID)
	assert.Equal(t, 100.0, balances[0].Balance)
	assert.Equal(t, "gems", balances[1].CurrencyID)
}

func TestTopBalances(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	rich := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 500})
	poor := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 10})
	createTestAccount(t, repo, domain.Balance{CurrencyID: "gems", Balance: 9000})

	ranked, err := repo.TopBalances(ctx, "coins", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, rich, ranked[0].UUID)
	assert.Equal(t, 500.0, ranked[0].Balance)
	assert.Equal(t, poor, ranked[1].UUID)

	ranked, err = repo.TopBalances(ctx, "coins", 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, rich, ranked[0].UUID)
}

func TestListTransactions(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 100})

	_, err := repo.Deposit(ctx, id, "coins", 25, "quest reward", true)
	require.NoError(t, err)
	_, err = repo.Withdraw(ctx, id, "coins", 10, "shop purchase", true)
	require.NoError(t, err)

	records, err := repo.ListTransactions(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, domain.TransactionWithdraw, records[0].Type)
	assert.Equal(t, 10.0, records[0].Amount)
	assert.Equal(t, 115.0, records[0].BalanceAfter)
	assert.Equal(t, "shop purchase", records[0].Description)
	assert.Equal(t, domain.TransactionDeposit, records[1].Type)
	assert.Equal(t, 125.0, records[1].BalanceAfter)

	records, err = repo.ListTransactions(ctx, id, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestTransactionLoggingDisabled(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	id := createTestAccount(t, repo, domain.Balance{CurrencyID: "coins", Balance: 100})

	_, err := repo.Deposit(ctx, id, "coins", 25, "", false)
	require.NoError(t, err)

	records, err := repo.ListTransactions(ctx, id, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
