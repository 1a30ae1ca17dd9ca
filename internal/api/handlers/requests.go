package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"landledger.io/registry/internal/domain"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/service"
	"landledger.io/registry/internal/usecase"
)

// LandRequest is the body of POST /lands.
type LandRequest struct {
	LandNumber    string  `json:"landNumber"`
	District      string  `json:"district"`
	Division      string  `json:"division"`
	LocalDivision string  `json:"localDivision"`
	Area          float64 `json:"area"`
	AreaUnit      string  `json:"areaUnit"`
	MapReference  string  `json:"mapReference"`
}

func (r LandRequest) input() service.LandInput {
	return service.LandInput{
		LandNumber:    strings.TrimSpace(r.LandNumber),
		District:      r.District,
		Division:      r.Division,
		LocalDivision: r.LocalDivision,
		Area:          r.Area,
		AreaUnit:      r.AreaUnit,
		MapReference:  r.MapReference,
	}
}

// OwnerRequest is the body of POST /owners.
type OwnerRequest struct {
	NIC               string `json:"nic"`
	FullName          string `json:"fullName"`
	Address           string `json:"address"`
	ContactNumber     string `json:"contactNumber"`
	PreviousOwnerName string `json:"previousOwnerName"`
}

func (r OwnerRequest) input() service.OwnerInput {
	return service.OwnerInput{
		NIC:               strings.TrimSpace(r.NIC),
		FullName:          r.FullName,
		Address:           r.Address,
		ContactNumber:     r.ContactNumber,
		PreviousOwnerName: r.PreviousOwnerName,
	}
}

// DeedRequest is the body of POST /deeds, PUT /deeds/{deedNumber} and
// POST /deeds/{deedNumber}/transfer. Status is read on update only; deed
// and land numbers are ignored on update.
type DeedRequest struct {
	DeedNumber       string `json:"deedNumber"`
	LandNumber       string `json:"landNumber"`
	OwnerNIC         string `json:"ownerNic"`
	RegistrationDate string `json:"registrationDate"`
	DeedType         string `json:"deedType"`
	Status           string `json:"status"`
	SurveyPlanNumber string `json:"surveyPlanNumber"`
	NotaryName       string `json:"notaryName"`
	Notes            string `json:"notes"`
}

func (r DeedRequest) createInput() (service.DeedInput, error) {
	date, err := parseRegistrationDate(r.RegistrationDate)
	if err != nil {
		return service.DeedInput{}, err
	}
	return service.DeedInput{
		DeedNumber:       strings.TrimSpace(r.DeedNumber),
		LandNumber:       strings.TrimSpace(r.LandNumber),
		OwnerNIC:         strings.TrimSpace(r.OwnerNIC),
		RegistrationDate: date,
		DeedType:         r.DeedType,
		SurveyPlanNumber: r.SurveyPlanNumber,
		NotaryName:       r.NotaryName,
		Notes:            r.Notes,
	}, nil
}

func (r DeedRequest) updateInput() (service.DeedUpdate, error) {
	date, err := parseRegistrationDate(r.RegistrationDate)
	if err != nil {
		return service.DeedUpdate{}, err
	}
	return service.DeedUpdate{
		LandNumber:       strings.TrimSpace(r.LandNumber),
		OwnerNIC:         strings.TrimSpace(r.OwnerNIC),
		RegistrationDate: date,
		DeedType:         r.DeedType,
		Status:           domain.DeedStatus(strings.ToUpper(strings.TrimSpace(r.Status))),
		SurveyPlanNumber: r.SurveyPlanNumber,
		NotaryName:       r.NotaryName,
		Notes:            r.Notes,
	}, nil
}

func (r DeedRequest) transferInput() (usecase.TransferInput, error) {
	date, err := parseRegistrationDate(r.RegistrationDate)
	if err != nil {
		return usecase.TransferInput{}, err
	}
	return usecase.TransferInput{
		DeedNumber:       strings.TrimSpace(r.DeedNumber),
		LandNumber:       strings.TrimSpace(r.LandNumber),
		OwnerNIC:         strings.TrimSpace(r.OwnerNIC),
		RegistrationDate: date,
		DeedType:         r.DeedType,
		SurveyPlanNumber: r.SurveyPlanNumber,
		NotaryName:       r.NotaryName,
		Notes:            r.Notes,
	}, nil
}

// parseRegistrationDate accepts a calendar date or an RFC 3339 timestamp.
// Blank yields the zero time, which input validation reports as missing.
func parseRegistrationDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return service.CalendarDate(t), nil
	}
	return time.Time{}, apperrors.ErrValidationf([]apperrors.FieldError{{
		Field:   "registrationDate",
		Code:    "INVALID",
		Message: "must be a date in YYYY-MM-DD form",
	}})
}

// bindJSON decodes the body into dst. Field-level rules are left to the
// service inputs so their errors carry field names.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidRequest, "Malformed JSON body: "+err.Error()))
		return false
	}
	return true
}
