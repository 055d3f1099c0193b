// Package sqlite provides the embedded SQLite implementation of the durable
// ledger, suited to single-host game servers that do not run PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/treasury/internal/apperrors"
	"github.com/questforge/treasury/internal/core/domain"
	portsrepo "github.com/questforge/treasury/internal/core/ports/repositories"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    uuid         TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    created_at   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS balances (
    uuid        TEXT NOT NULL,
    currency_id TEXT NOT NULL,
    balance     REAL NOT NULL DEFAULT 0 CHECK (balance >= 0),
    PRIMARY KEY (uuid, currency_id)
);
CREATE TABLE IF NOT EXISTS transactions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid          TEXT NOT NULL,
    currency_id   TEXT NOT NULL,
    type          TEXT NOT NULL,
    amount        REAL NOT NULL,
    balance_after REAL NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    timestamp     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_uuid ON transactions (uuid, id);
CREATE INDEX IF NOT EXISTS idx_balances_currency ON balances (currency_id, balance);
`

// LedgerRepository persists the ledger in a SQLite file.
type LedgerRepository struct {
	sqlDB *sql.DB
}

var _ portsrepo.LedgerRepository = (*LedgerRepository)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the SQLite ledger store and applies the embedded schema.
func Open(path string) (*LedgerRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &LedgerRepository{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (r *LedgerRepository) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStorage, err)
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text;
	// matching on the message avoids importing the driver's error types.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// HasAccount reports whether an account row exists.
func (r *LedgerRepository) HasAccount(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists int
	err := r.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE uuid = ?;`, id.String()).Scan(&exists)
	if err != nil {
		return false, storageError("check account existence", err)
	}
	return exists > 0, nil
}

// FindAccount retrieves an account row by uuid.
func (r *LedgerRepository) FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var (
		rawUUID   string
		name      string
		createdAt int64
	)
	err := r.sqlDB.QueryRowContext(ctx, `SELECT uuid, display_name, created_at FROM accounts WHERE uuid = ?;`, id.String()).
		Scan(&rawUUID, &name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, storageError("find account", err)
	}
	parsed, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, storageError("parse account uuid", err)
	}
	return &domain.Account{UUID: parsed, DisplayName: name, CreatedAt: fromMillis(createdAt)}, nil
}

// CreateAccount inserts the account and its seed balances in one transaction.
func (r *LedgerRepository) CreateAccount(ctx context.Context, account domain.Account, seeds []domain.Balance) error {
	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin create-account transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO accounts (uuid, display_name, created_at) VALUES (?, ?, ?);`,
		account.UUID.String(), account.DisplayName, toMillis(account.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.UUID, apperrors.ErrDuplicate)
		}
		return storageError("insert account", err)
	}

	for _, seed := range seeds {
		_, err = tx.ExecContext(ctx, `INSERT INTO balances (uuid, currency_id, balance) VALUES (?, ?, ?);`,
			seed.UUID.String(), seed.CurrencyID, seed.Balance)
		if err != nil {
			return storageError("insert seed balance", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("commit create-account transaction", err)
	}
	return nil
}

// GetBalance returns the durable balance, treating a missing row as 0.
func (r *LedgerRepository) GetBalance(ctx context.Context, id uuid.UUID, currencyID string) (float64, error) {
	var balance float64
	err := r.sqlDB.QueryRowContext(ctx, `SELECT balance FROM balances WHERE uuid = ? AND currency_id = ?;`, id.String(), currencyID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, storageError("get balance", err)
	}
	return balance, nil
}

// ListBalances returns every balance row for the account.
func (r *LedgerRepository) ListBalances(ctx context.Context, id uuid.UUID) ([]domain.Balance, error) {
	rows, err := r.sqlDB.QueryContext(ctx, `SELECT uuid, currency_id, balance FROM balances WHERE uuid = ? ORDER BY currency_id;`, id.String())
	if err != nil {
		return nil, storageError("list balances", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var (
			rawUUID string
			b       domain.Balance
		)
		if err := rows.Scan(&rawUUID, &b.CurrencyID, &b.Balance); err != nil {
			return nil, storageError("scan balance row", err)
		}
		parsed, err := uuid.Parse(rawUUID)
		if err != nil {
			return nil, storageError("parse balance uuid", err)
		}
		b.UUID = parsed
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate balance rows", err)
	}
	return balances, nil
}

// EnsureBalanceRow lazily creates the (account, currency) row.
func (r *LedgerRepository) EnsureBalanceRow(ctx context.Context, id uuid.UUID, currencyID string, starting float64) error {
	_, err := r.sqlDB.ExecContext(ctx,
		`INSERT INTO balances (uuid, currency_id, balance) VALUES (?, ?, ?) ON CONFLICT (uuid, currency_id) DO NOTHING;`,
		id.String(), currencyID, starting)
	if err != nil {
		return storageError("ensure balance row", err)
	}
	return nil
}

func (r *LedgerRepository) mutateBalance(ctx context.Context, id uuid.UUID, currencyID string, txnType domain.TransactionType, amount float64, updateSQL string, description string, logTxn bool) (float64, error) {
	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageError("begin balance transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, updateSQL, amount, id.String(), currencyID)
	if err != nil {
		return 0, storageError("update balance", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageError("read affected rows", err)
	}
	if affected == 0 {
		if txnType == domain.TransactionWithdraw {
			return 0, fmt.Errorf("withdraw %v from %s/%s: %w", amount, id, currencyID, apperrors.ErrInsufficientFunds)
		}
		return 0, fmt.Errorf("balance row %s/%s: %w", id, currencyID, apperrors.ErrNotFound)
	}

	var balance float64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM balances WHERE uuid = ? AND currency_id = ?;`, id.String(), currencyID).Scan(&balance)
	if err != nil {
		return 0, storageError("read updated balance", err)
	}

	if logTxn {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (uuid, currency_id, type, amount, balance_after, description, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?);`,
			id.String(), currencyID, string(txnType), amount, balance, description, toMillis(time.Now()))
		if err != nil {
			return 0, storageError("append transaction record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageError("commit balance transaction", err)
	}
	return balance, nil
}

// Deposit adds amount to the balance row.
func (r *LedgerRepository) Deposit(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error) {
	return r.mutateBalance(ctx, id, currencyID, domain.TransactionDeposit, amount,
		`UPDATE balances SET balance = balance + ? WHERE uuid = ? AND currency_id = ?;`,
		description, logTxn)
}

// Withdraw subtracts amount, guarded so the row never goes negative.
func (r *LedgerRepository) Withdraw(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error) {
	return r.mutateBalance(ctx, id, currencyID, domain.TransactionWithdraw, amount,
		`UPDATE balances SET balance = balance - ? WHERE uuid = ? AND currency_id = ? AND balance >= ?1;`,
		description, logTxn)
}

// SetBalance overwrites the balance row.
func (r *LedgerRepository) SetBalance(ctx context.Context, id uuid.UUID, currencyID string, amount float64, description string, logTxn bool) (float64, error) {
	return r.mutateBalance(ctx, id, currencyID, domain.TransactionSet, amount,
		`INSERT INTO balances (uuid, currency_id, balance) VALUES (?2, ?3, ?1)
		 ON CONFLICT (uuid, currency_id) DO UPDATE SET balance = excluded.balance;`,
		description, logTxn)
}

// TopBalances ranks accounts by balance for one currency, descending.
func (r *LedgerRepository) TopBalances(ctx context.Context, currencyID string, limit int) ([]domain.RankedBalance, error) {
	query := `
		SELECT b.uuid, a.display_name, b.balance
		FROM balances b
		JOIN accounts a ON a.uuid = b.uuid
		WHERE b.currency_id = ?
		ORDER BY b.balance DESC, a.display_name ASC
		LIMIT ?;
	`
	rows, err := r.sqlDB.QueryContext(ctx, query, currencyID, limit)
	if err != nil {
		return nil, storageError("query top balances", err)
	}
	defer rows.Close()

	var ranked []domain.RankedBalance
	for rows.Next() {
		var (
			rawUUID string
			rb      domain.RankedBalance
		)
		if err := rows.Scan(&rawUUID, &rb.DisplayName, &rb.Balance); err != nil {
			return nil, storageError("scan ranked balance", err)
		}
		parsed, err := uuid.Parse(rawUUID)
		if err != nil {
			return nil, storageError("parse ranked uuid", err)
		}
		rb.UUID = parsed
		ranked = append(ranked, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate ranked balances", err)
	}
	return ranked, nil
}

// ListTransactions returns the account's audit records, newest first.
func (r *LedgerRepository) ListTransactions(ctx context.Context, id uuid.UUID, limit int) ([]domain.TransactionRecord, error) {
	query := `
		SELECT id, uuid, currency_id, type, amount, balance_after, description, timestamp
		FROM transactions
		WHERE uuid = ?
		ORDER BY id DESC
		LIMIT ?;
	`
	rows, err := r.sqlDB.QueryContext(ctx, query, id.String(), limit)
	if err != nil {
		return nil, storageError("query transactions", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var (
			rawUUID string
			rawType string
			millis  int64
			rec     domain.TransactionRecord
		)
		if err := rows.Scan(&rec.ID, &rawUUID, &rec.CurrencyID, &rawType, &rec.Amount, &rec.BalanceAfter, &rec.Description, &millis); err != nil {
			return nil, storageError("scan transaction record", err)
		}
		parsed, err := uuid.Parse(rawUUID)
		if err != nil {
			return nil, storageError("parse transaction uuid", err)
		}
		rec.UUID = parsed
		rec.Type = domain.TransactionType(rawType)
		rec.Timestamp = fromMillis(millis)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate transaction records", err)
	}
	return records, nil
}
