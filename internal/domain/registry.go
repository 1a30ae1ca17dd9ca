// Package domain provides the registry's domain models.
//
// One canonical schema for lands, owners and deeds; stores and handlers
// convert to and from these types.
//
// Import Path: landledger.io/registry/internal/domain
package domain

import (
	"strconv"
	"time"
)

// DateLayout is the calendar-date layout used for registration dates.
const DateLayout = "2006-01-02"

// Land is a registered parcel.
type Land struct {
	LandNumber    string    `json:"landNumber"`
	District      string    `json:"district"`
	Division      string    `json:"division"`
	LocalDivision string    `json:"localDivision,omitempty"`
	Area          float64   `json:"area"`
	AreaUnit      string    `json:"areaUnit"`
	MapReference  string    `json:"mapReference"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Extent renders the area with its unit, e.g. "10 Perches".
// Trailing zeros are dropped so 10 and 10.0 render identically.
func (l Land) Extent() string {
	extent := strconv.FormatFloat(l.Area, 'f', -1, 64)
	if l.AreaUnit == "" {
		return extent
	}
	return extent + " " + l.AreaUnit
}

// Owner is a person holding or having held deeds.
type Owner struct {
	NIC               string    `json:"nic"`
	FullName          string    `json:"fullName"`
	Address           string    `json:"address"`
	ContactNumber     string    `json:"contactNumber"`
	PreviousOwnerName string    `json:"previousOwnerName,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// DeedStatus is the transfer state of a deed.
type DeedStatus string

const (
	DeedStatusActive      DeedStatus = "ACTIVE"
	DeedStatusTransferred DeedStatus = "TRANSFERRED"
)

// Valid reports whether s is a known status.
func (s DeedStatus) Valid() bool {
	return s == DeedStatusActive || s == DeedStatusTransferred
}

// Deed records one ownership assertion over a land.
type Deed struct {
	DeedNumber       string     `json:"deedNumber"`
	LandNumber       string     `json:"landNumber"`
	OwnerNIC         string     `json:"ownerNic"`
	RegistrationDate time.Time  `json:"registrationDate"`
	DeedType         string     `json:"deedType"`
	Status           DeedStatus `json:"status"`
	SurveyPlanNumber string     `json:"surveyPlanNumber,omitempty"`
	NotaryName       string     `json:"notaryName,omitempty"`

	// Snapshot of the superseded deed, set only when this deed came from a transfer.
	PreviousDeedNumber       string     `json:"previousDeedNumber,omitempty"`
	PreviousOwnerNIC         string     `json:"previousOwnerNic,omitempty"`
	PreviousRegistrationDate *time.Time `json:"previousRegistrationDate,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsActive reports whether the deed can be transferred.
func (d Deed) IsActive() bool {
	return d.Status == DeedStatusActive
}

// AuditAction is the kind of action recorded in the audit log.
type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionTransfer AuditAction = "TRANSFER"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionSearch   AuditAction = "SEARCH"
)

// AuditEntry is an immutable audit log record.
type AuditEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"user"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
}

// LedgerEntry is the sealed digest of a deed at creation time.
type LedgerEntry struct {
	DeedNumber  string    `json:"deedId"`
	Digest      string    `json:"hash"`
	Timestamp   time.Time `json:"timestamp"`
	BlockNumber int64     `json:"blockNumber"`
}

// LedgerBaseBlock is the block number preceding the first ledger entry.
const LedgerBaseBlock int64 = 1000

// RegistryStats summarises the registry for dashboards.
type RegistryStats struct {
	Lands         int `json:"lands"`
	Owners        int `json:"owners"`
	Deeds         int `json:"deeds"`
	ActiveDeeds   int `json:"activeDeeds"`
	LedgerEntries int `json:"ledgerEntries"`
}
