// Package integrity computes and checks deed content digests.
//
// A digest is SHA-256 over the canonical field string (fields joined by "|"
// in a fixed order), rendered as lowercase hex. The field order is part of
// the on-ledger contract: reordering invalidates every recorded digest.
//
// No normalization is applied. A whitespace-only edit changes the digest.
//
// Import Path: landledger.io/registry/internal/integrity
package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"landledger.io/registry/internal/domain"
)

// Separator joins canonical fields.
const Separator = "|"

// DeedFields is the hash input, in canonical order.
type DeedFields struct {
	DeedNumber             string
	OwnerName              string
	OwnerNIC               string
	LandExtent             string
	LandLocation           string
	District               string
	DivisionalSecretariat  string
	GramaNiladhariDivision string
	SurveyPlanNumber       string
	NotaryName             string
	RegistrationDate       string
	PreviousOwner          string
}

// FieldsFor builds the hash input for a deed from its current land and owner.
func FieldsFor(deed domain.Deed, land domain.Land, owner domain.Owner) DeedFields {
	return DeedFields{
		DeedNumber:             deed.DeedNumber,
		OwnerName:              owner.FullName,
		OwnerNIC:               deed.OwnerNIC,
		LandExtent:             land.Extent(),
		LandLocation:           land.MapReference,
		District:               land.District,
		DivisionalSecretariat:  land.Division,
		GramaNiladhariDivision: land.LocalDivision,
		SurveyPlanNumber:       deed.SurveyPlanNumber,
		NotaryName:             deed.NotaryName,
		RegistrationDate:       deed.RegistrationDate.Format(domain.DateLayout),
		PreviousOwner:          owner.PreviousOwnerName,
	}
}

// Canonical renders the fields in wire order.
func (f DeedFields) Canonical() string {
	return strings.Join([]string{
		f.DeedNumber,
		f.OwnerName,
		f.OwnerNIC,
		f.LandExtent,
		f.LandLocation,
		f.District,
		f.DivisionalSecretariat,
		f.GramaNiladhariDivision,
		f.SurveyPlanNumber,
		f.NotaryName,
		f.RegistrationDate,
		f.PreviousOwner,
	}, Separator)
}

// Digest returns the lowercase hex SHA-256 of the canonical string.
func Digest(f DeedFields) string {
	sum := sha256.Sum256([]byte(f.Canonical()))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the digest of f equals recorded exactly.
func Verify(f DeedFields, recorded string) bool {
	current := Digest(f)
	return len(current) == len(recorded) &&
		subtle.ConstantTimeCompare([]byte(current), []byte(recorded)) == 1
}

// ShortDigest renders a digest as first8...last8 for display.
func ShortDigest(digest string) string {
	if len(digest) <= 16 {
		return digest
	}
	return digest[:8] + "..." + digest[len(digest)-8:]
}
