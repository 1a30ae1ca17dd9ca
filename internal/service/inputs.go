package service

import (
	"strings"
	"time"

	"landledger.io/registry/internal/domain"
	apperrors "landledger.io/registry/internal/pkg/errors"
)

// Field error codes.
const (
	fieldRequired = "REQUIRED"
	fieldInvalid  = "INVALID"
)

// LandInput holds the fields of a land registration.
type LandInput struct {
	LandNumber    string
	District      string
	Division      string
	LocalDivision string
	Area          float64
	AreaUnit      string
	MapReference  string
}

// Validate checks required fields.
func (in LandInput) Validate() error {
	var fe fieldErrors
	fe.required("landNumber", in.LandNumber)
	fe.required("district", in.District)
	fe.required("division", in.Division)
	fe.required("areaUnit", in.AreaUnit)
	if in.Area <= 0 {
		fe.add("area", fieldInvalid, "must be greater than zero")
	}
	return fe.err()
}

// OwnerInput holds the fields of an owner registration.
type OwnerInput struct {
	NIC               string
	FullName          string
	Address           string
	ContactNumber     string
	PreviousOwnerName string
}

// Validate checks required fields.
func (in OwnerInput) Validate() error {
	var fe fieldErrors
	fe.required("nic", in.NIC)
	fe.required("fullName", in.FullName)
	return fe.err()
}

// DeedInput holds the fields of a deed registration. An empty DeedNumber is
// allocated with NextDeedNumber.
type DeedInput struct {
	DeedNumber       string
	LandNumber       string
	OwnerNIC         string
	RegistrationDate time.Time
	DeedType         string
	SurveyPlanNumber string
	NotaryName       string
	Notes            string
}

// Validate checks required fields.
func (in DeedInput) Validate() error {
	var fe fieldErrors
	fe.required("landNumber", in.LandNumber)
	fe.required("ownerNic", in.OwnerNIC)
	fe.required("deedType", in.DeedType)
	if in.RegistrationDate.IsZero() {
		fe.add("registrationDate", fieldRequired, "is required")
	}
	return fe.err()
}

// DeedUpdate replaces the mutable fields of a deed. An empty Status keeps
// the current one.
type DeedUpdate struct {
	LandNumber       string
	OwnerNIC         string
	RegistrationDate time.Time
	DeedType         string
	Status           domain.DeedStatus
	SurveyPlanNumber string
	NotaryName       string
	Notes            string
}

// Validate checks required fields and the status value.
func (in DeedUpdate) Validate() error {
	var fe fieldErrors
	fe.required("landNumber", in.LandNumber)
	fe.required("ownerNic", in.OwnerNIC)
	fe.required("deedType", in.DeedType)
	if in.RegistrationDate.IsZero() {
		fe.add("registrationDate", fieldRequired, "is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		fe.add("status", fieldInvalid, "must be ACTIVE or TRANSFERRED")
	}
	return fe.err()
}

type fieldErrors []apperrors.FieldError

func (f *fieldErrors) add(field, code, msg string) {
	*f = append(*f, apperrors.FieldError{Field: field, Code: code, Message: msg})
}

func (f *fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, fieldRequired, "is required")
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.ErrValidationf(f)
}

// CalendarDate drops the clock so registration dates compare and hash as dates.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
