package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"
)

const uniqueViolationCode = "23505"

// PgxLedgerRepository is the PostgreSQL implementation of the durable ledger.
type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// NewPgxLedgerRepository creates a new repository over the connection pool.
func NewPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{pool: pool}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorage, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// HasAccount reports whether an account row exists.
func (r *PgxLedgerRepository) HasAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE uuid = $1);`, id).Scan(&exists)
	if err != nil {
		return false, storageError("check account existence", err)
	}
	return exists, nil
}

// FindAccount retrieves an account row by uuid.
func (r *PgxLedgerRepository) FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT uuid, display_name, created_at
		FROM accounts
		WHERE uuid = $1;
	`
	var account domain.Account
	err := r.pool.QueryRow(ctx, query, id).Scan(&account.UUID, &account.DisplayName, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, storageError("find account", err)
	}
	return &account, nil
}

// CreateAccount inserts the account row plus all seed balance rows within a
// single database transaction.
func (r *PgxLedgerRepository) CreateAccount(ctx context.Context, account domain.Account, seeds []domain.Balance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageError("begin create-account transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	accountQuery := `
		INSERT INTO accounts (uuid, display_name, created_at)
		VALUES ($1, $2, $3);
	`
	_, err = tx.Exec(ctx, accountQuery, account.UUID, account.DisplayName, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.UUID, apperrors.ErrDuplicate)
		}
		return storageError("insert account", err)
	}

	batch := &pgx.Batch{}
	seedQuery := `
		INSERT INTO balances (uuid, currency_id, balance)
		VALUES ($1, $2, $3);
	`
	for _, seed := range seeds {
		batch.Queue(seedQuery, seed.UUID, seed.CurrencyID, seed.Balance)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return storageError("insert seed balances", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit create-account transaction", err)
	}
	return nil
}

// GetBalance returns the durable balance, treating a missing row as 0.
func (r *PgxLedgerRepository) GetBalance(ctx context.Context, id uuid.UUID, currencyID string) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx, `SELECT balance FROM balances WHERE uuid = $1 AND currency_id = $2;`, id, currencyID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, storageError("get balance", err)
	}
	return balance, nil
}

// ListBalances returns every balance row for the account.
func (r *PgxLedgerRepository) ListBalances(ctx context.Context, id uuid.UUID) ([]domain.Balance, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, currency_id, balance FROM balances WHERE uuid = $1 ORDER BY currency_id;`, id)
	if err != nil {
		return nil, storageError("list balances", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.UUID, &b.CurrencyID, &b.Balance); err != nil {
			return nil, storageError("scan balance row", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate balance rows", err)
	}
	return balances, nil
}

// EnsureBalanceRow lazily creates the (account, currency) row.
func (r *PgxLedgerRepository) EnsureBalanceRow(ctx context.Context, id uuid.UUID, currencyID string, starting float64) error {
	query := `
		INSERT INTO balances (uuid, currency_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (uuid, currency_id) DO NOTHING;
	`
	if _, err := r.pool.Exec(ctx, query, id, currencyID, starting); err != nil {
		return storageError("ensure balance row", err)
	}
	return nil
}

// mutateBalance runs the balance update plus the optional audit append in
// one transaction, so a failed log write rolls the balance change back.
func (r *PgxLedgerRepository) mutateBalance(ctx context.Context, id uuid.UUID, currencyID string, txnType domain.TransactionType, amount float64, updateSQL string, description string, logTxn bool) (float64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, storageError("begin balance transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var balance float64
	err = tx.QueryRow(ctx, updateSQL, id, currencyID, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The guarded update matched nothing: the row exists (callers
			// ensure it) but cannot cover the withdrawal.
			if txnType == domain.TransactionWithdraw {
				return 0, fmt.Errorf("withdraw %v from %s/%s: %w", amount, id, currencyID, apperrors.ErrInsufficientFunds)
			}
			return 0, fmt.Errorf("balance row %s/%s: %w", id, currencyID, apperrors.ErrNotFound)
		}
		return 0, storageError("update balance", err)
	}

	if logTxn {
		logQuery := `
			INSERT INTO transactions (uuid, currency_id, type, amount, balance_after, description, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
		`
		_, err = tx.Exec(ctx, logQuery, id, currencyID, txnType, amount, balance, description, time.Now().UTC())
		if err != nil {
			return 0, storageError("append transaction record", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storageError("commit balance transaction", err)
	}
	return balance, nil
}

// Deposit adds amount to the balance row.
func (r *PgxLedgerRepository) Deposit(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error) {
	updateSQL := `
		UPDATE balances SET balance = balance + $3
		WHERE uuid = $1 AND currency_id = $2
		RETURNING balance;
	`
	return r.mutateBalance(ctx, id, currencyID, domain.TransactionDeposit, amount, updateSQL, description, logTxn)
}

// Withdraw subtracts amount. The balance guard in the WHERE clause makes
// concurrent withdrawals serialise on the row and rules out overdrafts.
func (r *PgxLedgerRepository) Withdraw(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error) {
	updateSQL := `
		UPDATE balances SET balance = balance - $3
		WHERE uuid = $1 AND currency_id = $2 AND balance >= $3
		RETURNING balance;
	`
	return r.mutateBalance(ctx, id, currencyID, domain.TransactionWithdraw, amount, updateSQL, description, logTxn)
}

// SetBalance overwrites the balance row.
func (r *PgxLedgerRepository) SetBalance(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error) {
	updateSQL := `
		INSERT INTO balances (uuid, currency_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (uuid, currency_id) DO UPDATE SET balance = EXCLUDED.balance
		RETURNING balance;
	`
	return r.mutateBalance(ctx, id, currencyID, domain.TransactionSet, amount, updateSQL, description, logTxn)
}

// TopBalances ranks accounts by balance for one currency, descending.
func (r *PgxLedgerRepository) TopBalances(ctx context.Context, currencyID string, limit int) ([]domain.RankedBalance, error) {
	query := `
		SELECT b.uuid, a.display_name, b.balance
		FROM balances b
		JOIN accounts a ON a.uuid = b.uuid
		WHERE b.currency_id = $1
		ORDER BY b.balance DESC, a.display_name ASC
		LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, currencyID, limit)
	if err != nil {
		return nil, storageError("query top balances", err)
	}
	defer rows.Close()

	var ranked []domain.RankedBalance
	for rows.Next() {
		var rb domain.RankedBalance
		if err := rows.Scan(&rb.UUID, &rb.DisplayName, &rb.Balance); err != nil {
			return nil, storageError("scan ranked balance", err)
		}
		ranked = append(ranked, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate ranked balances", err)
	}
	return ranked, nil
}

// ListTransactions returns the account's audit records, newest first.
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]domain.TransactionRecord, error) {
	query := `
		SELECT id, uuid, currency_id, type, amount, balance_after, description, timestamp
		FROM transactions
		WHERE uuid = $1
		ORDER BY id DESC
		LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, id, limit)
	if err != nil {
		return nil, storageError("query transactions", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var rec domain.TransactionRecord
		if err := rows.Scan(&rec.ID, &rec.UUID, &rec.CurrencyID, &rec.Type, &rec.Amount, &rec.BalanceAfter, &rec.Description, &rec.Timestamp); err != nil {
			return nil, storageError("scan transaction record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate transaction records", err)
	}
	return records, nil
}
