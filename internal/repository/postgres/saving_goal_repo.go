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

const savingGoalColumns = `id, workspace_id, name, base_currency, target_amount, current_amount,
	priority, due_date, category, created_at, updated_at`

// SavingGoalRepository implements domain.SavingGoalRepository using PostgreSQL
type SavingGoalRepository struct {
	pool *pgxpool.Pool
}

// NewSavingGoalRepository creates a new SavingGoalRepository
func NewSavingGoalRepository(pool *pgxpool.Pool) *SavingGoalRepository {
	return &SavingGoalRepository{pool: pool}
}

// Create inserts a saving goal
func (r *SavingGoalRepository) Create(goal *domain.SavingGoal) (*domain.SavingGoal, error) {
	ctx := context.Background()
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, err
	}
	current, err := decimalToPgNumeric(goal.CurrentAmount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO saving_goals (workspace_id, name, base_currency, target_amount, current_amount, priority, due_date, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+savingGoalColumns,
		goal.WorkspaceID, goal.Name, goal.BaseCurrency, target, current,
		string(goal.Priority), nullableTimeToPgDate(goal.DueDate), goal.Category,
	)
	created, err := scanSavingGoal(row)
	if err != nil {
		return nil, fmt.Errorf("insert saving goal: %w", err)
	}
	return created, nil
}

// GetByID retrieves a saving goal by its ID within a workspace
func (r *SavingGoalRepository) GetByID(workspaceID int32, id int32) (*domain.SavingGoal, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+savingGoalColumns+`
		FROM saving_goals WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	goal, err := scanSavingGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSavingGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

// ListByWorkspace retrieves all saving goals of a workspace ordered by ID
func (r *SavingGoalRepository) ListByWorkspace(workspaceID int32) ([]*domain.SavingGoal, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+savingGoalColumns+`
		FROM saving_goals WHERE workspace_id = $1 ORDER BY id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.SavingGoal{}
	for rows.Next() {
		goal, err := scanSavingGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, goal)
	}
	return result, rows.Err()
}

// Update rewrites a goal's settings, leaving its current amount untouched
func (r *SavingGoalRepository) Update(goal *domain.SavingGoal) (*domain.SavingGoal, error) {
	ctx := context.Background()
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE saving_goals
		SET name = $3, base_currency = $4, target_amount = $5, priority = $6, due_date = $7, category = $8, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING `+savingGoalColumns,
		goal.ID, goal.WorkspaceID, goal.Name, goal.BaseCurrency, target,
		string(goal.Priority), nullableTimeToPgDate(goal.DueDate), goal.Category,
	)
	updated, err := scanSavingGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSavingGoalNotFound
		}
		return nil, fmt.Errorf("update saving goal: %w", err)
	}
	return updated, nil
}

// Delete removes a goal; its contributions go with it
func (r *SavingGoalRepository) Delete(workspaceID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM saving_goals WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSavingGoalNotFound
	}
	return nil
}

// AddContribution atomically records a contribution and raises the goal's current amount
func (r *SavingGoalRepository) AddContribution(workspaceID int32, c *domain.GoalContribution) (*domain.SavingGoal, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(c.Amount)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. Bump the goal; this also proves it belongs to the workspace
	row := tx.QueryRow(ctx, `
		UPDATE saving_goals
		SET current_amount = current_amount + $3, updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2
		RETURNING `+savingGoalColumns, c.GoalID, workspaceID, amount)
	goal, err := scanSavingGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSavingGoalNotFound
		}
		return nil, err
	}

	// 2. Record the contribution
	var id int32
	if err := tx.QueryRow(ctx, `
		INSERT INTO goal_contributions (goal_id, amount, date, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		c.GoalID, amount, timeToPgDate(c.Date), stringToPgText(c.Note),
	).Scan(&id, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert contribution: %w", err)
	}
	c.ID = id

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return goal, nil
}

// ListContributions retrieves the contributions of a goal, newest first
func (r *SavingGoalRepository) ListContributions(workspaceID int32, goalID int32) ([]*domain.GoalContribution, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.goal_id, c.amount, c.date, c.note, c.created_at
		FROM goal_contributions c
		JOIN saving_goals g ON g.id = c.goal_id
		WHERE g.workspace_id = $1 AND c.goal_id = $2
		ORDER BY c.date DESC, c.id DESC`, workspaceID, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.GoalContribution{}
	for rows.Next() {
		var (
			c      domain.GoalContribution
			amount pgtype.Numeric
			date   pgtype.Date
			note   pgtype.Text
		)
		if err := rows.Scan(&c.ID, &c.GoalID, &amount, &date, &note, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Amount = pgNumericToDecimal(amount)
		c.Date = pgDateToTime(date)
		c.Note = pgTextToString(note)
		result = append(result, &c)
	}
	return result, rows.Err()
}

func scanSavingGoal(row scanner) (*domain.SavingGoal, error) {
	var (
		g               domain.SavingGoal
		target, current pgtype.Numeric
		priority        string
		dueDate         pgtype.Date
	)
	if err := row.Scan(&g.ID, &g.WorkspaceID, &g.Name, &g.BaseCurrency, &target, &current,
		&priority, &dueDate, &g.Category, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.TargetAmount = pgNumericToDecimal(target)
	g.CurrentAmount = pgNumericToDecimal(current)
	g.Priority = domain.Priority(priority)
	g.DueDate = pgDateToTimePtr(dueDate)
	return &g, nil
}
