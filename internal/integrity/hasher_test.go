package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/domain"
)

func sampleFields() DeedFields {
	return DeedFields{
		DeedNumber:             "D001",
		OwnerName:              "John Doe",
		OwnerNIC:               "123456789V",
		LandExtent:             "10 Perches",
		LandLocation:           "Map 42/7",
		District:               "Colombo",
		DivisionalSecretariat:  "Thimbirigasyaya",
		GramaNiladhariDivision: "Kollupitiya",
		SurveyPlanNumber:       "SP-1001",
		NotaryName:             "A. Perera",
		RegistrationDate:       "2024-01-15",
		PreviousOwner:          "",
	}
}

func TestCanonical_Order(t *testing.T) {
	assert.Equal(t,
		"D001|John Doe|123456789V|10 Perches|Map 42/7|Colombo|Thimbirigasyaya|Kollupitiya|SP-1001|A. Perera|2024-01-15|",
		sampleFields().Canonical(),
	)
}

func TestDigest_KnownValue(t *testing.T) {
	f := sampleFields()
	sum := sha256.Sum256([]byte(f.Canonical()))
	assert.Equal(t, hex.EncodeToString(sum[:]), Digest(f))
	assert.Len(t, Digest(f), 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, Digest(f))
}

func TestDigest_Deterministic(t *testing.T) {
	assert.Equal(t, Digest(sampleFields()), Digest(sampleFields()))
}

func TestVerify_DetectsEverySingleFieldChange(t *testing.T) {
	base := sampleFields()
	recorded := Digest(base)
	require.True(t, Verify(base, recorded))

	v := reflect.ValueOf(&base).Elem()
	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Name
		t.Run(name, func(t *testing.T) {
			f := sampleFields()
			field := reflect.ValueOf(&f).Elem().Field(i)
			original := field.String()

			field.SetString(original + " ")
			assert.False(t, Verify(f, recorded), "trailing whitespace in %s must be detected", name)

			field.SetString(original)
			assert.True(t, Verify(f, recorded), "reverting %s must restore validity", name)
		})
	}
}

func TestVerify_CaseSensitive(t *testing.T) {
	f := sampleFields()
	recorded := Digest(f)
	f.OwnerName = "john doe"
	assert.False(t, Verify(f, recorded))
}

func TestVerify_MalformedRecorded(t *testing.T) {
	f := sampleFields()
	assert.False(t, Verify(f, ""))
	assert.False(t, Verify(f, "abc"))
}

func TestFieldsFor(t *testing.T) {
	deed := domain.Deed{
		DeedNumber:       "D001",
		OwnerNIC:         "123456789V",
		RegistrationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		SurveyPlanNumber: "SP-1001",
		NotaryName:       "A. Perera",
	}
	land := domain.Land{
		LandNumber:    "L001",
		District:      "Colombo",
		Division:      "Thimbirigasyaya",
		LocalDivision: "Kollupitiya",
		Area:          10,
		AreaUnit:      "Perches",
		MapReference:  "Map 42/7",
	}
	owner := domain.Owner{NIC: "123456789V", FullName: "John Doe"}

	assert.Equal(t, sampleFields(), FieldsFor(deed, land, owner))
}

func TestShortDigest(t *testing.T) {
	d := Digest(sampleFields())
	short := ShortDigest(d)
	assert.Equal(t, d[:8]+"..."+d[56:], short)
	assert.Equal(t, "abc", ShortDigest("abc"))
}
