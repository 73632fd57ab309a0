package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwrona/fuelroute/internal/model"
)

// AccountRepository is the admin-facing account registry. Sessions are
// owned by the session store; this table only backs account management
// (listing, blocking) and the blocked-account login check.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// UpsertAccount records a login/registration. Existing accounts keep
// their status and violation count; only name and role are refreshed.
func (r *AccountRepository) UpsertAccount(ctx context.Context, acc *model.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, role, status)
		VALUES ($1, $2, $3, $4, 'active')
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name, role = EXCLUDED.role
	`
	if _, err := r.pool.Exec(ctx, query, acc.ID, acc.Name, acc.Email, acc.Role); err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// GetAccountByEmail fetches one account, or ErrNotFound.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT id, name, email, role, status, violations, joined_at
		FROM accounts
		WHERE email = $1
	`
	acc := &model.Account{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&acc.ID, &acc.Name, &acc.Email, &acc.Role,
		&acc.Status, &acc.Violations, &acc.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get account %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", email, err)
	}
	return acc, nil
}

// ListAccounts returns every registered account, oldest first.
func (r *AccountRepository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	query := `
		SELECT id, name, email, role, status, violations, joined_at
		FROM accounts
		ORDER BY joined_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(
			&acc.ID, &acc.Name, &acc.Email, &acc.Role,
			&acc.Status, &acc.Violations, &acc.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// SetAccountStatus blocks or unblocks an account.
func (r *AccountRepository) SetAccountStatus(ctx context.Context, id string, status model.AccountStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set account status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set account status %s: %w", id, ErrNotFound)
	}
	return nil
}
