package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const plannedExpenseColumns = `id, workspace_id, kind, card_id, category, currency, amount, band_min, band_max,
	confidence, recurrence_type, day_rule, anchor_day, date, n_installments, amount_equiv_est,
	concept, notes, is_active, created_at, updated_at`

// PlannedExpenseRepository implements domain.PlannedExpenseRepository using PostgreSQL
type PlannedExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewPlannedExpenseRepository creates a new PlannedExpenseRepository
func NewPlannedExpenseRepository(pool *pgxpool.Pool) *PlannedExpenseRepository {
	return &PlannedExpenseRepository{pool: pool}
}

// Create inserts a planned expense
func (r *PlannedExpenseRepository) Create(p *domain.PlannedExpense) (*domain.PlannedExpense, error) {
	ctx := context.Background()
	amount, err := nullableDecimalToPgNumeric(p.Amount)
	if err != nil {
		return nil, err
	}
	equiv, err := nullableDecimalToPgNumeric(p.AmountEquivEst)
	if err != nil {
		return nil, err
	}
	bandMin, bandMax, err := bandColumns(p.VariableBand)
	if err != nil {
		return nil, err
	}
	recurrenceType, dayRule, anchorDay := recurrenceColumns(p.Recurrence)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO planned_expenses (workspace_id, kind, card_id, category, currency, amount, band_min, band_max,
			confidence, recurrence_type, day_rule, anchor_day, date, n_installments, amount_equiv_est,
			concept, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+plannedExpenseColumns,
		p.WorkspaceID, string(p.Kind), int32ToPgInt4(p.CardID), p.Category, p.Currency, amount, bandMin, bandMax,
		string(p.Confidence), recurrenceType, dayRule, anchorDay, nullableTimeToPgDate(p.Date),
		intToPgInt4(p.NInstallments), equiv, p.Concept, stringToPgText(p.Notes), p.IsActive,
	)
	created, err := scanPlannedExpense(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("insert planned expense: %w", err)
	}
	return created, nil
}

// GetByID retrieves a planned expense by its ID within a workspace
func (r *PlannedExpenseRepository) GetByID(workspaceID int32, id int32) (*domain.PlannedExpense, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+plannedExpenseColumns+`
		FROM planned_expenses WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	p, err := scanPlannedExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlannedExpenseNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByWorkspace retrieves planned expenses ordered by ID, optionally only active ones
func (r *PlannedExpenseRepository) ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*domain.PlannedExpense, error) {
	ctx := context.Background()
	onlyActive := activeOnly != nil && *activeOnly
	rows, err := r.pool.Query(ctx, `SELECT `+plannedExpenseColumns+`
		FROM planned_expenses
		WHERE workspace_id = $1 AND (NOT $2 OR is_active)
		ORDER BY id`, workspaceID, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.PlannedExpense{}
	for rows.Next() {
		p, err := scanPlannedExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Update rewrites a planned expense
func (r *PlannedExpenseRepository) Update(p *domain.PlannedExpense) (*domain.PlannedExpense, error) {
	ctx := context.Background()
	amount, err := nullableDecimalToPgNumeric(p.Amount)
	if err != nil {
		return nil, err
	}
	equiv, err := nullableDecimalToPgNumeric(p.AmountEquivEst)
	if err != nil {
		return nil, err
	}
	bandMin, bandMax, err := bandColumns(p.VariableBand)
	if err != nil {
		return nil, err
	}
	recurrenceType, dayRule, anchorDay := recurrenceColumns(p.Recurrence)

	row := r.pool.QueryRow(ctx, `
		UPDATE planned_expenses
		SET kind = $3, card_id = $4, category = $5, currency = $6, amount = $7, band_min = $8, band_max = $9,
			confidence = $10, recurrence_type = $11, day_rule = $12, anchor_day = $13, date = $14,
			n_installments = $15, amount_equiv_est = $16, concept = $17, notes = $18, is_active = $19,
			updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING `+plannedExpenseColumns,
		p.ID, p.WorkspaceID, string(p.Kind), int32ToPgInt4(p.CardID), p.Category, p.Currency, amount, bandMin, bandMax,
		string(p.Confidence), recurrenceType, dayRule, anchorDay, nullableTimeToPgDate(p.Date),
		intToPgInt4(p.NInstallments), equiv, p.Concept, stringToPgText(p.Notes), p.IsActive,
	)
	updated, err := scanPlannedExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlannedExpenseNotFound
		}
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("update planned expense: %w", err)
	}
	return updated, nil
}

// Delete removes a planned expense together with its installment payments
func (r *PlannedExpenseRepository) Delete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM planned_expenses WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlannedExpenseNotFound
	}
	return nil
}

func scanPlannedExpense(row scanner) (*domain.PlannedExpense, error) {
	var (
		p                               domain.PlannedExpense
		kind, confidence                string
		cardID, anchorDay, installments pgtype.Int4
		amount, bandMin, bandMax, equiv pgtype.Numeric
		recurrenceType, dayRule, notes  pgtype.Text
		date                            pgtype.Date
	)
	if err := row.Scan(
		&p.ID, &p.WorkspaceID, &kind, &cardID, &p.Category, &p.Currency, &amount, &bandMin, &bandMax,
		&confidence, &recurrenceType, &dayRule, &anchorDay, &date, &installments, &equiv,
		&p.Concept, &notes, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Kind = domain.ExpenseKind(kind)
	p.CardID = pgInt4ToInt32(cardID)
	p.Amount = pgNumericToDecimalPtr(amount)
	p.VariableBand = bandFromColumns(bandMin, bandMax)
	p.Confidence = domain.Confidence(confidence)
	p.Recurrence = recurrenceFromColumns(recurrenceType, dayRule, anchorDay)
	p.Date = pgDateToTimePtr(date)
	p.NInstallments = pgInt4ToInt(installments)
	p.AmountEquivEst = pgNumericToDecimalPtr(equiv)
	p.Notes = pgTextToString(notes)
	return &p, nil
}

const observedExpenseColumns = `id, workspace_id, category, concept, currency, amount, date, planned_id, created_at`

// ObservedExpenseRepository implements domain.ObservedExpenseRepository using PostgreSQL
type ObservedExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewObservedExpenseRepository creates a new ObservedExpenseRepository
func NewObservedExpenseRepository(pool *pgxpool.Pool) *ObservedExpenseRepository {
	return &ObservedExpenseRepository{pool: pool}
}

// Create inserts an observed expense
func (r *ObservedExpenseRepository) Create(o *domain.ObservedExpense) (*domain.ObservedExpense, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(o.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO observed_expenses (workspace_id, category, concept, currency, amount, date, planned_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+observedExpenseColumns,
		o.WorkspaceID, o.Category, o.Concept, o.Currency, amount, timeToPgDate(o.Date), int32ToPgInt4(o.PlannedID),
	)
	created, err := scanObservedExpense(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrPlannedExpenseNotFound
		}
		return nil, fmt.Errorf("insert observed expense: %w", err)
	}
	return created, nil
}

// ListByWorkspace retrieves all observed expenses ordered by date
func (r *ObservedExpenseRepository) ListByWorkspace(workspaceID int32) ([]*domain.ObservedExpense, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+observedExpenseColumns+`
		FROM observed_expenses WHERE workspace_id = $1 ORDER BY date, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collectObservedExpenses(rows)
}

// ListByDateRange retrieves observed expenses with from <= date <= to
func (r *ObservedExpenseRepository) ListByDateRange(workspaceID int32, from, to time.Time) ([]*domain.ObservedExpense, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+observedExpenseColumns+`
		FROM observed_expenses
		WHERE workspace_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, id`, workspaceID, timeToPgDate(from), timeToPgDate(to))
	if err != nil {
		return nil, err
	}
	return collectObservedExpenses(rows)
}

func collectObservedExpenses(rows pgx.Rows) ([]*domain.ObservedExpense, error) {
	defer rows.Close()
	result := []*domain.ObservedExpense{}
	for rows.Next() {
		o, err := scanObservedExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func scanObservedExpense(row scanner) (*domain.ObservedExpense, error) {
	var (
		o         domain.ObservedExpense
		amount    pgtype.Numeric
		date      pgtype.Date
		plannedID pgtype.Int4
	)
	if err := row.Scan(&o.ID, &o.WorkspaceID, &o.Category, &o.Concept, &o.Currency, &amount, &date, &plannedID, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Amount = pgNumericToDecimal(amount)
	o.Date = pgDateToTime(date)
	o.PlannedID = pgInt4ToInt32(plannedID)
	return &o, nil
}
