package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantType  string
		wantField string
	}{
		{"field error", &fieldError{field: "from", message: "Must be YYYY-MM-DD"}, http.StatusBadRequest, ErrorTypeValidation, "from"},
		{"mapped validation", fmt.Errorf("wrapped: %w", domain.ErrBandInvalid), http.StatusBadRequest, ErrorTypeValidation, "variableBand"},
		{"unmapped validation", domain.ErrInvalidInput, http.StatusBadRequest, ErrorTypeValidation, ""},
		{"not found", domain.ErrSavingGoalNotFound, http.StatusNotFound, ErrorTypeNotFound, ""},
		{"conflict", domain.ErrInstallmentAlreadyPaid, http.StatusConflict, ErrorTypeConflict, ""},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ErrorTypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c, rec := newJSONContext(e, http.MethodGet, "/api/v1/anything", "")

			require.NoError(t, respondError(c, tt.err, 1, "do the thing"))
			assert.Equal(t, tt.wantCode, rec.Code)

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/v1/anything", problem.Instance)
			if tt.wantField != "" {
				require.Len(t, problem.Errors, 1)
				assert.Equal(t, tt.wantField, problem.Errors[0].Field)
			}
			if tt.wantCode == http.StatusInternalServerError {
				assert.Equal(t, "Failed to do the thing", problem.Detail, "internal details must not leak")
			}
		})
	}
}
