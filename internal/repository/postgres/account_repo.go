package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, workspace_id, name, type, country, currencies, balances, liquidity_tier,
	allow_auto_suggest, notes, created_at, updated_at, deleted_at`

// AccountRepository implements domain.AccountRepository using PostgreSQL.
// Balances are stored as a JSONB object of decimal strings keyed by currency.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts an account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (workspace_id, name, type, country, currencies, balances, liquidity_tier, allow_auto_suggest, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns,
		account.WorkspaceID, account.Name, string(account.Type), account.Country, account.Currencies,
		balancesOrEmpty(account.Balances), string(account.LiquidityTier), account.AllowAutoSuggest, stringToPgText(account.Notes),
	)
	created, err := scanAccount(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrAccountNameTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// GetByID retrieves an active account by its ID within a workspace
func (r *AccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+`
		FROM accounts WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL`, id, workspaceID)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListByWorkspace retrieves the accounts of a workspace ordered by name
func (r *AccountRepository) ListByWorkspace(workspaceID int32, includeArchived bool) ([]*domain.Account, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+`
		FROM accounts
		WHERE workspace_id = $1 AND ($2 OR deleted_at IS NULL)
		ORDER BY name, id`, workspaceID, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

// Update rewrites an active account
func (r *AccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = $3, type = $4, country = $5, currencies = $6, balances = $7, liquidity_tier = $8,
			allow_auto_suggest = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
		RETURNING `+accountColumns,
		account.ID, account.WorkspaceID, account.Name, string(account.Type), account.Country, account.Currencies,
		balancesOrEmpty(account.Balances), string(account.LiquidityTier), account.AllowAutoSuggest, stringToPgText(account.Notes),
	)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrAccountNameTaken
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

// SoftDelete marks an account as deleted (sets deleted_at timestamp)
func (r *AccountRepository) SoftDelete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func balancesOrEmpty(balances map[string]decimal.Decimal) map[string]decimal.Decimal {
	if balances == nil {
		return map[string]decimal.Decimal{}
	}
	return balances
}

func scanAccount(row scanner) (*domain.Account, error) {
	var (
		a                 domain.Account
		accountType, tier string
		notes             pgtype.Text
		deletedAt         pgtype.Timestamptz
	)
	if err := row.Scan(&a.ID, &a.WorkspaceID, &a.Name, &accountType, &a.Country, &a.Currencies, &a.Balances,
		&tier, &a.AllowAutoSuggest, &notes, &a.CreatedAt, &a.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(accountType)
	a.LiquidityTier = domain.LiquidityTier(tier)
	a.Notes = pgTextToString(notes)
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return &a, nil
}
