package errors

import "fmt"

// Land error codes.
const (
	CodeLandNotFound = "LAND_NOT_FOUND"
	CodeLandExists   = "LAND_ALREADY_EXISTS"
)

// Owner error codes.
const (
	CodeOwnerNotFound = "OWNER_NOT_FOUND"
	CodeOwnerExists   = "OWNER_ALREADY_EXISTS"
)

// Deed error codes.
const (
	CodeDeedNotFound  = "DEED_NOT_FOUND"
	CodeDeedExists    = "DEED_ALREADY_EXISTS"
	CodeDeedNotActive = "DEED_NOT_ACTIVE"
)

// Ledger error codes.
const (
	CodeLedgerEntryNotFound = "LEDGER_ENTRY_NOT_FOUND"
	CodeLedgerEntryExists   = "LEDGER_ENTRY_EXISTS"
)

// Request error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrLandNotFoundf reports a land reference that does not resolve.
func ErrLandNotFoundf(landNumber string) *AppError {
	return NotFound(CodeLandNotFound, fmt.Sprintf("Land %s does not exist", landNumber)).
		WithParams(map[string]interface{}{"land_number": landNumber})
}

// ErrLandExistsf reports a duplicate land number.
func ErrLandExistsf(landNumber string) *AppError {
	return Conflict(CodeLandExists, fmt.Sprintf("Land %s already exists", landNumber)).
		WithParams(map[string]interface{}{"land_number": landNumber})
}

// ErrOwnerNotFoundf reports an owner NIC that does not resolve.
func ErrOwnerNotFoundf(nic string) *AppError {
	return NotFound(CodeOwnerNotFound, fmt.Sprintf("Owner %s does not exist", nic)).
		WithParams(map[string]interface{}{"nic": nic})
}

// ErrOwnerExistsf reports a duplicate owner NIC.
func ErrOwnerExistsf(nic string) *AppError {
	return Conflict(CodeOwnerExists, fmt.Sprintf("Owner %s already exists", nic)).
		WithParams(map[string]interface{}{"nic": nic})
}

// ErrDeedNotFoundf reports a deed number that does not resolve.
func ErrDeedNotFoundf(deedNumber string) *AppError {
	return NotFound(CodeDeedNotFound, fmt.Sprintf("Deed %s does not exist", deedNumber)).
		WithParams(map[string]interface{}{"deed_number": deedNumber})
}

// ErrDeedExistsf reports a duplicate deed number.
func ErrDeedExistsf(deedNumber string) *AppError {
	return Conflict(CodeDeedExists, fmt.Sprintf("Deed %s already exists", deedNumber)).
		WithParams(map[string]interface{}{"deed_number": deedNumber})
}

// ErrDeedNotActivef reports a transfer attempted on a non-ACTIVE deed.
func ErrDeedNotActivef(deedNumber, status string) *AppError {
	return InvalidState(CodeDeedNotActive, fmt.Sprintf("Deed %s is not active", deedNumber)).
		WithParams(map[string]interface{}{"deed_number": deedNumber, "status": status})
}

// ErrLedgerEntryNotFoundf reports a deed that was never sealed.
func ErrLedgerEntryNotFoundf(deedNumber string) *AppError {
	return NotFound(CodeLedgerEntryNotFound, fmt.Sprintf("Deed %s has no ledger entry", deedNumber)).
		WithParams(map[string]interface{}{"deed_number": deedNumber})
}

// ErrLedgerEntryExistsf reports a second seal attempt for the same deed.
func ErrLedgerEntryExistsf(deedNumber string) *AppError {
	return Conflict(CodeLedgerEntryExists, fmt.Sprintf("Deed %s is already sealed in the ledger", deedNumber)).
		WithParams(map[string]interface{}{"deed_number": deedNumber})
}

// ErrValidationf reports boundary validation failures.
func ErrValidationf(fieldErrors []FieldError) *AppError {
	msg := "request validation failed"
	if len(fieldErrors) == 1 {
		msg = fieldErrors[0].Field + ": " + fieldErrors[0].Message
	}
	return BadRequest(CodeValidationFailed, msg).WithFieldErrors(fieldErrors)
}
