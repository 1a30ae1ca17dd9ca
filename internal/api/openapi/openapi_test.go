package openapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/lands", "/lands/{landNumber}", "/lands/{landNumber}/history",
		"/owners", "/owners/{nic}",
		"/deeds", "/deeds/next-id", "/deeds/search", "/deeds/{deedNumber}",
		"/deeds/{deedNumber}/transfer", "/deeds/{deedNumber}/verify",
		"/ledger", "/ledger/verify", "/ledger/{deedNumber}",
		"/audit-logs", "/stats", "/health/live", "/health/ready",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
	assert.NotEmpty(t, Document())
}
