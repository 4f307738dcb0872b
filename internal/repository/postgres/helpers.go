package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// NewPool connects to PostgreSQL and verifies the connection
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func nullableDecimalToPgNumeric(d *decimal.Decimal) (pgtype.Numeric, error) {
	if d == nil {
		return pgtype.Numeric{}, nil
	}
	return decimalToPgNumeric(*d)
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func pgNumericToDecimalPtr(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := pgNumericToDecimal(n)
	return &d
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{
		Time:  t,
		Valid: true,
	}
}

func nullableTimeToPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return timeToPgDate(*t)
}

func pgDateToTime(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return d.Time
}

func pgDateToTimePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func intToPgInt4(i *int) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*i), Valid: true}
}

func pgInt4ToInt(i pgtype.Int4) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}

func int32ToPgInt4(i *int32) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *i, Valid: true}
}

func pgInt4ToInt32(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	v := i.Int32
	return &v
}

func stringToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToString(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// recurrenceColumns flattens a recurrence into its nullable columns
func recurrenceColumns(r *domain.Recurrence) (pgtype.Text, pgtype.Text, pgtype.Int4) {
	if r == nil {
		return pgtype.Text{}, pgtype.Text{}, pgtype.Int4{}
	}
	return pgtype.Text{String: string(r.Type), Valid: true},
		pgtype.Text{String: string(r.DayRule), Valid: r.DayRule != ""},
		intToPgInt4(r.AnchorDay)
}

func recurrenceFromColumns(recurrenceType, dayRule pgtype.Text, anchorDay pgtype.Int4) *domain.Recurrence {
	if !recurrenceType.Valid {
		return nil
	}
	return &domain.Recurrence{
		Type:      domain.RecurrenceType(recurrenceType.String),
		DayRule:   domain.DayRule(dayRule.String),
		AnchorDay: pgInt4ToInt(anchorDay),
	}
}

// bandColumns flattens a variable band into its nullable min and max columns
func bandColumns(b *domain.VariableBand) (pgtype.Numeric, pgtype.Numeric, error) {
	if b == nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, nil
	}
	lo, err := decimalToPgNumeric(b.Min)
	if err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, err
	}
	hi, err := decimalToPgNumeric(b.Max)
	if err != nil {
		return pgtype.Numeric{}, pgtype.Numeric{}, err
	}
	return lo, hi, nil
}

func bandFromColumns(lo, hi pgtype.Numeric) *domain.VariableBand {
	if !lo.Valid || !hi.Valid {
		return nil
	}
	return &domain.VariableBand{Min: pgNumericToDecimal(lo), Max: pgNumericToDecimal(hi)}
}

func isPgUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// PostgreSQL unique violation error code is 23505
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
