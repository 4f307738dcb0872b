package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// fieldError reports a request field that could not be parsed
type fieldError struct {
	field   string
	message string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &fieldError{field: field, message: "Must be a valid decimal number"}
	}
	return d, nil
}

func parseOptionalDecimal(field string, raw *string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := parseDecimal(field, *raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(util.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &fieldError{field: field, message: "Must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

func parseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDateQuery reads a YYYY-MM-DD query parameter, falling back when it is absent
func parseDateQuery(c echo.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return parseDate(name, raw)
}

// parseWindowQuery reads ?from&to. Missing bounds default to twelve months
// back and three months ahead of today.
func parseWindowQuery(c echo.Context, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from, err := parseDateQuery(c, "from", today.AddDate(0, -12, 0))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateQuery(c, "to", today.AddDate(0, 3, 0))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseIDParam(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, &fieldError{field: name, message: "Must be a positive integer"}
	}
	return int32(id), nil
}

func parseActiveQuery(c echo.Context) (*bool, error) {
	raw := c.QueryParam("active")
	if raw == "" {
		return nil, nil
	}
	active, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &fieldError{field: "active", message: "Must be true or false"}
	}
	return &active, nil
}

// BandRequest is a min/max range with decimal strings
type BandRequest struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

func (b *BandRequest) parse() (*domain.VariableBand, error) {
	if b == nil {
		return nil, nil
	}
	lo, err := parseDecimal("variableBand.min", b.Min)
	if err != nil {
		return nil, err
	}
	hi, err := parseDecimal("variableBand.max", b.Max)
	if err != nil {
		return nil, err
	}
	return &domain.VariableBand{Min: lo, Max: hi}, nil
}

// RecurrenceRequest describes when a planned record repeats
type RecurrenceRequest struct {
	Type      string `json:"type"`
	DayRule   string `json:"dayRule"`
	AnchorDay *int   `json:"anchorDay,omitempty"`
}

func (r *RecurrenceRequest) toDomain() *domain.Recurrence {
	if r == nil {
		return nil
	}
	return &domain.Recurrence{
		Type:      domain.RecurrenceType(r.Type),
		DayRule:   domain.DayRule(r.DayRule),
		AnchorDay: r.AnchorDay,
	}
}
