package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cardColumns = `id, workspace_id, name, type, currencies, cutoff_day, payment_day, created_at, updated_at`

// CardRepository implements domain.CardRepository using PostgreSQL
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

// Create inserts a card
func (r *CardRepository) Create(card *domain.Card) (*domain.Card, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cards (workspace_id, name, type, currencies, cutoff_day, payment_day)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+cardColumns,
		card.WorkspaceID, card.Name, string(card.Type), card.Currencies,
		intToPgInt4(card.CutoffDay), intToPgInt4(card.PaymentDay),
	)
	created, err := scanCard(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCardNameTaken
		}
		return nil, fmt.Errorf("insert card: %w", err)
	}
	return created, nil
}

// GetByID retrieves a card by its ID within a workspace
func (r *CardRepository) GetByID(workspaceID int32, id int32) (*domain.Card, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// ListByWorkspace retrieves all cards of a workspace ordered by name
func (r *CardRepository) ListByWorkspace(workspaceID int32) ([]*domain.Card, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+cardColumns+` FROM cards WHERE workspace_id = $1 ORDER BY name, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, card)
	}
	return result, rows.Err()
}

// Update rewrites a card's settings
func (r *CardRepository) Update(card *domain.Card) (*domain.Card, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE cards
		SET name = $3, type = $4, currencies = $5, cutoff_day = $6, payment_day = $7, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING `+cardColumns,
		card.ID, card.WorkspaceID, card.Name, string(card.Type), card.Currencies,
		intToPgInt4(card.CutoffDay), intToPgInt4(card.PaymentDay),
	)
	updated, err := scanCard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCardNameTaken
		}
		return nil, fmt.Errorf("update card: %w", err)
	}
	return updated, nil
}

// Delete removes a card. Cards still referenced by planned expenses are kept.
func (r *CardRepository) Delete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.ErrCardInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func scanCard(row scanner) (*domain.Card, error) {
	var (
		card                  domain.Card
		cardType              string
		cutoffDay, paymentDay pgtype.Int4
	)
	if err := row.Scan(&card.ID, &card.WorkspaceID, &card.Name, &cardType, &card.Currencies,
		&cutoffDay, &paymentDay, &card.CreatedAt, &card.UpdatedAt); err != nil {
		return nil, err
	}
	card.Type = domain.CardType(cardType)
	card.CutoffDay = pgInt4ToInt(cutoffDay)
	card.PaymentDay = pgInt4ToInt(paymentDay)
	return &card, nil
}
