package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InstallmentPaymentRepository implements domain.InstallmentPaymentRepository using PostgreSQL
type InstallmentPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentPaymentRepository creates a new InstallmentPaymentRepository
func NewInstallmentPaymentRepository(pool *pgxpool.Pool) *InstallmentPaymentRepository {
	return &InstallmentPaymentRepository{pool: pool}
}

// MarkPaid records a payment. Marking an already paid installment keeps the first paid_at.
func (r *InstallmentPaymentRepository) MarkPaid(workspaceID int32, payment *domain.InstallmentPayment) (*domain.InstallmentPayment, error) {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO installment_payments (workspace_id, expense_id, installment_number, paid_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (expense_id, installment_number) DO NOTHING`,
		workspaceID, payment.ExpenseID, payment.InstallmentNumber, payment.PaidAt,
	)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return nil, domain.ErrPlannedExpenseNotFound
		}
		return nil, fmt.Errorf("insert installment payment: %w", err)
	}

	stored := domain.InstallmentPayment{}
	err = r.pool.QueryRow(ctx, `
		SELECT expense_id, installment_number, paid_at
		FROM installment_payments
		WHERE workspace_id = $1 AND expense_id = $2 AND installment_number = $3`,
		workspaceID, payment.ExpenseID, payment.InstallmentNumber,
	).Scan(&stored.ExpenseID, &stored.InstallmentNumber, &stored.PaidAt)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListByExpense retrieves the payments of an expense ordered by installment number
func (r *InstallmentPaymentRepository) ListByExpense(workspaceID int32, expenseID int32) ([]*domain.InstallmentPayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT expense_id, installment_number, paid_at
		FROM installment_payments
		WHERE workspace_id = $1 AND expense_id = $2
		ORDER BY installment_number`, workspaceID, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.InstallmentPayment{}
	for rows.Next() {
		var p domain.InstallmentPayment
		if err := rows.Scan(&p.ExpenseID, &p.InstallmentNumber, &p.PaidAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}
