package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New("DEED_NOT_FOUND", "Deed D001 does not exist", http.StatusNotFound),
			want: "DEED_NOT_FOUND: Deed D001 does not exist",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("db error"), "DB_ERROR", "database failure", http.StatusInternalServerError),
			want: "DB_ERROR: database failure: db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg", 500)

	assert.True(t, errors.Is(appErr, inner))
}

func TestIsAppError(t *testing.T) {
	wrapped := fmt.Errorf("wrapped: %w", ErrDeedNotFoundf("D001"))

	got, ok := IsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeDeedNotFound, got.Code)
	assert.Equal(t, "D001", got.Params["deed_number"])
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		sentinel   error
		wantStatus int
		wantMsg    string
	}{
		{"land not found", ErrLandNotFoundf("L001"), ErrNotFound, http.StatusNotFound, "Land L001 does not exist"},
		{"land exists", ErrLandExistsf("L001"), ErrConflict, http.StatusConflict, "Land L001 already exists"},
		{"owner not found", ErrOwnerNotFoundf("123456789V"), ErrNotFound, http.StatusNotFound, "Owner 123456789V does not exist"},
		{"owner exists", ErrOwnerExistsf("123456789V"), ErrConflict, http.StatusConflict, "Owner 123456789V already exists"},
		{"deed not found", ErrDeedNotFoundf("D001"), ErrNotFound, http.StatusNotFound, "Deed D001 does not exist"},
		{"deed exists", ErrDeedExistsf("D001"), ErrConflict, http.StatusConflict, "Deed D001 already exists"},
		{"deed not active", ErrDeedNotActivef("D001", "TRANSFERRED"), ErrInvalidState, http.StatusConflict, "Deed D001 is not active"},
		{"ledger missing", ErrLedgerEntryNotFoundf("D001"), ErrNotFound, http.StatusNotFound, "Deed D001 has no ledger entry"},
		{"ledger sealed", ErrLedgerEntryExistsf("D001"), ErrConflict, http.StatusConflict, "Deed D001 is already sealed in the ledger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.True(t, errors.Is(tt.err, tt.sentinel), "want %v in chain", tt.sentinel)
		})
	}
}

func TestErrValidationf(t *testing.T) {
	single := ErrValidationf([]FieldError{{Field: "landNumber", Code: "required", Message: "is required"}})
	assert.Equal(t, "landNumber: is required", single.Message)
	assert.Equal(t, http.StatusBadRequest, single.HTTPStatus)
	assert.True(t, errors.Is(single, ErrValidation))

	multi := ErrValidationf([]FieldError{
		{Field: "landNumber", Code: "required"},
		{Field: "ownerNic", Code: "required"},
	})
	assert.Equal(t, "request validation failed", multi.Message)
	assert.Len(t, multi.FieldErrors, 2)
}

func TestInternal_IsOpaque(t *testing.T) {
	err := Internal(fmt.Errorf("connection reset"))
	assert.Equal(t, CodeInternal, err.Code)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)

	assert.True(t, errors.Is(Internal(nil), ErrInternal))
}
