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

const plannedIncomeColumns = `id, workspace_id, source, category, currency, amount, band_min, band_max,
	confidence, recurrence_type, day_rule, anchor_day, is_active, notes, created_at, updated_at`

// PlannedIncomeRepository implements domain.PlannedIncomeRepository using PostgreSQL
type PlannedIncomeRepository struct {
	pool *pgxpool.Pool
}

// NewPlannedIncomeRepository creates a new PlannedIncomeRepository
func NewPlannedIncomeRepository(pool *pgxpool.Pool) *PlannedIncomeRepository {
	return &PlannedIncomeRepository{pool: pool}
}

// Create inserts a planned income
func (r *PlannedIncomeRepository) Create(p *domain.PlannedIncome) (*domain.PlannedIncome, error) {
	ctx := context.Background()
	amount, err := nullableDecimalToPgNumeric(p.Amount)
	if err != nil {
		return nil, err
	}
	bandMin, bandMax, err := bandColumns(p.VariableBand)
	if err != nil {
		return nil, err
	}
	recurrenceType, dayRule, anchorDay := recurrenceColumns(p.Recurrence)

	row := r.pool.QueryRow(ctx, `
		INSERT INTO planned_incomes (workspace_id, source, category, currency, amount, band_min, band_max,
			confidence, recurrence_type, day_rule, anchor_day, is_active, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+plannedIncomeColumns,
		p.WorkspaceID, p.Source, p.Category, p.Currency, amount, bandMin, bandMax,
		string(p.Confidence), recurrenceType, dayRule, anchorDay, p.IsActive, stringToPgText(p.Notes),
	)
	created, err := scanPlannedIncome(row)
	if err != nil {
		return nil, fmt.Errorf("insert planned income: %w", err)
	}
	return created, nil
}

// GetByID retrieves a planned income by its ID within a workspace
func (r *PlannedIncomeRepository) GetByID(workspaceID int32, id int32) (*domain.PlannedIncome, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+plannedIncomeColumns+`
		FROM planned_incomes WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	p, err := scanPlannedIncome(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlannedIncomeNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByWorkspace retrieves planned incomes ordered by ID, optionally only active ones
func (r *PlannedIncomeRepository) ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*domain.PlannedIncome, error) {
	ctx := context.Background()
	onlyActive := activeOnly != nil && *activeOnly
	rows, err := r.pool.Query(ctx, `SELECT `+plannedIncomeColumns+`
		FROM planned_incomes
		WHERE workspace_id = $1 AND (NOT $2 OR is_active)
		ORDER BY id`, workspaceID, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.PlannedIncome{}
	for rows.Next() {
		p, err := scanPlannedIncome(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Update rewrites a planned income
func (r *PlannedIncomeRepository) Update(p *domain.PlannedIncome) (*domain.PlannedIncome, error) {
	ctx := context.Background()
	amount, err := nullableDecimalToPgNumeric(p.Amount)
	if err != nil {
		return nil, err
	}
	bandMin, bandMax, err := bandColumns(p.VariableBand)
	if err != nil {
		return nil, err
	}
	recurrenceType, dayRule, anchorDay := recurrenceColumns(p.Recurrence)

	row := r.pool.QueryRow(ctx, `
		UPDATE planned_incomes
		SET source = $3, category = $4, currency = $5, amount = $6, band_min = $7, band_max = $8,
			confidence = $9, recurrence_type = $10, day_rule = $11, anchor_day = $12, is_active = $13,
			notes = $14, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING `+plannedIncomeColumns,
		p.ID, p.WorkspaceID, p.Source, p.Category, p.Currency, amount, bandMin, bandMax,
		string(p.Confidence), recurrenceType, dayRule, anchorDay, p.IsActive, stringToPgText(p.Notes),
	)
	updated, err := scanPlannedIncome(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlannedIncomeNotFound
		}
		return nil, fmt.Errorf("update planned income: %w", err)
	}
	return updated, nil
}

// Delete removes a planned income. Observed records that referenced it have planned_id cleared.
func (r *PlannedIncomeRepository) Delete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM planned_incomes WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlannedIncomeNotFound
	}
	return nil
}

func scanPlannedIncome(row scanner) (*domain.PlannedIncome, error) {
	var (
		p                        domain.PlannedIncome
		confidence               string
		amount, bandMin, bandMax pgtype.Numeric
		recurrenceType, dayRule  pgtype.Text
		anchorDay                pgtype.Int4
		notes                    pgtype.Text
	)
	if err := row.Scan(
		&p.ID, &p.WorkspaceID, &p.Source, &p.Category, &p.Currency, &amount, &bandMin, &bandMax,
		&confidence, &recurrenceType, &dayRule, &anchorDay, &p.IsActive, &notes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Amount = pgNumericToDecimalPtr(amount)
	p.VariableBand = bandFromColumns(bandMin, bandMax)
	p.Confidence = domain.Confidence(confidence)
	p.Recurrence = recurrenceFromColumns(recurrenceType, dayRule, anchorDay)
	p.Notes = pgTextToString(notes)
	return &p, nil
}

const observedIncomeColumns = `id, workspace_id, source, category, currency, amount, date, planned_id, created_at`

// ObservedIncomeRepository implements domain.ObservedIncomeRepository using PostgreSQL
type ObservedIncomeRepository struct {
	pool *pgxpool.Pool
}

// NewObservedIncomeRepository creates a new ObservedIncomeRepository
func NewObservedIncomeRepository(pool *pgxpool.Pool) *ObservedIncomeRepository {
	return &ObservedIncomeRepository{pool: pool}
}

// Create inserts an observed income
func (r *ObservedIncomeRepository) Create(o *domain.ObservedIncome) (*domain.ObservedIncome, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(o.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO observed_incomes (workspace_id, source, category, currency, amount, date, planned_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+observedIncomeColumns,
		o.WorkspaceID, o.Source, o.Category, o.Currency, amount, timeToPgDate(o.Date), int32ToPgInt4(o.PlannedID),
	)
	created, err := scanObservedIncome(row)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrPlannedIncomeNotFound
		}
		return nil, fmt.Errorf("insert observed income: %w", err)
	}
	return created, nil
}

// ListByWorkspace retrieves all observed incomes ordered by date
func (r *ObservedIncomeRepository) ListByWorkspace(workspaceID int32) ([]*domain.ObservedIncome, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+observedIncomeColumns+`
		FROM observed_incomes WHERE workspace_id = $1 ORDER BY date, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collectObservedIncomes(rows)
}

// ListByDateRange retrieves observed incomes with from <= date <= to
func (r *ObservedIncomeRepository) ListByDateRange(workspaceID int32, from, to time.Time) ([]*domain.ObservedIncome, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+observedIncomeColumns+`
		FROM observed_incomes
		WHERE workspace_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, id`, workspaceID, timeToPgDate(from), timeToPgDate(to))
	if err != nil {
		return nil, err
	}
	return collectObservedIncomes(rows)
}

func collectObservedIncomes(rows pgx.Rows) ([]*domain.ObservedIncome, error) {
	defer rows.Close()
	result := []*domain.ObservedIncome{}
	for rows.Next() {
		o, err := scanObservedIncome(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func scanObservedIncome(row scanner) (*domain.ObservedIncome, error) {
	var (
		o         domain.ObservedIncome
		amount    pgtype.Numeric
		date      pgtype.Date
		plannedID pgtype.Int4
	)
	if err := row.Scan(&o.ID, &o.WorkspaceID, &o.Source, &o.Category, &o.Currency, &amount, &date, &plannedID, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Amount = pgNumericToDecimal(amount)
	o.Date = pgDateToTime(date)
	o.PlannedID = pgInt4ToInt32(plannedID)
	return &o, nil
}
