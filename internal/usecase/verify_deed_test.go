package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/domain"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/pkg/metrics"
	"landledger.io/registry/internal/pkg/worker"
	"landledger.io/registry/internal/service"
)

func newIntegrityPool(t *testing.T) *worker.Pool {
	t.Helper()
	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 2, IntegrityPoolSize: 4})
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)
	return pools.Integrity
}

func tamperNotary(t *testing.T, f *fixture, deedNumber string) {
	t.Helper()
	deed, err := f.registry.GetDeed(context.Background(), deedNumber)
	require.NoError(t, err)
	_, err = f.registry.UpdateDeed(context.Background(), deedNumber, service.DeedUpdate{
		LandNumber:       deed.LandNumber,
		OwnerNIC:         deed.OwnerNIC,
		RegistrationDate: deed.RegistrationDate,
		DeedType:         deed.DeedType,
		SurveyPlanNumber: deed.SurveyPlanNumber,
		NotaryName:       "Forged Notary",
	}, "")
	require.NoError(t, err)
}

func TestIntegrityVerifier_Verify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := metrics.New()
	v := NewIntegrityVerifier(f.store, nil, m, f.events)

	result, err := v.Verify(ctx, "D001")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, result.RecordedDigest, result.CurrentDigest)
	assert.Equal(t, domain.LedgerBaseBlock+1, result.BlockNumber)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrityChecks.WithLabelValues(metrics.ResultValid)))

	tamperNotary(t, f, "D001")

	result, err = v.Verify(ctx, "D001")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.NotEqual(t, result.RecordedDigest, result.CurrentDigest)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrityChecks.WithLabelValues(metrics.ResultTampered)))
	assert.Equal(t, 1, f.events.count(domain.EventTamperDetected))
}

func TestIntegrityVerifier_UnhashedEditStaysValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := NewIntegrityVerifier(f.store, nil, nil, nil)

	deed, err := f.registry.GetDeed(ctx, "D001")
	require.NoError(t, err)
	_, err = f.registry.UpdateDeed(ctx, "D001", service.DeedUpdate{
		LandNumber:       deed.LandNumber,
		OwnerNIC:         deed.OwnerNIC,
		RegistrationDate: deed.RegistrationDate,
		DeedType:         "Gift",
		SurveyPlanNumber: deed.SurveyPlanNumber,
		NotaryName:       deed.NotaryName,
		Notes:            "deed type corrected",
	}, "")
	require.NoError(t, err)

	result, err := v.Verify(ctx, "D001")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestIntegrityVerifier_TransferredDeedStaysValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := NewIntegrityVerifier(f.store, nil, nil, nil)

	_, err := NewTransferWorkflow(f.store, f.audit, nil).Transfer(ctx, "D001", transferTo("198598765432"), "")
	require.NoError(t, err)

	for _, n := range []string{"D001", "D001-01"} {
		result, err := v.Verify(ctx, n)
		require.NoError(t, err)
		assert.True(t, result.IsValid, n)
	}
}

func TestIntegrityVerifier_VerifyNotFound(t *testing.T) {
	f := newFixture(t)
	v := NewIntegrityVerifier(f.store, nil, nil, nil)

	_, err := v.Verify(context.Background(), "D404")
	requireCode(t, err, apperrors.CodeDeedNotFound)
}

func TestIntegrityVerifier_VerifyAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 2; i <= 12; i++ {
		_, err := f.registry.CreateDeed(ctx, service.DeedInput{
			DeedNumber: fmt.Sprintf("D%03d", i), LandNumber: "L002", OwnerNIC: "198598765432",
			RegistrationDate: regDate, DeedType: "Sale",
		}, "")
		require.NoError(t, err)
	}
	tamperNotary(t, f, "D003")
	tamperNotary(t, f, "D007")
	_, err := f.registry.DeleteDeed(ctx, "D010", "")
	require.NoError(t, err)

	m := metrics.New()
	v := NewIntegrityVerifier(f.store, newIntegrityPool(t), m, nil)

	report, err := v.VerifyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, report.Checked)
	assert.Equal(t, 9, report.Valid)
	assert.Equal(t, 2, report.Tampered)
	assert.Equal(t, 1, report.Missing)
	require.Len(t, report.Results, 12)

	byDeed := make(map[string]Verification, len(report.Results))
	for i, r := range report.Results {
		assert.Equal(t, domain.LedgerBaseBlock+int64(i)+1, r.BlockNumber, "results keep ledger order")
		byDeed[r.DeedNumber] = r
	}
	assert.False(t, byDeed["D003"].IsValid)
	assert.False(t, byDeed["D007"].IsValid)
	assert.True(t, byDeed["D010"].Missing)
	assert.False(t, byDeed["D010"].IsValid)
	assert.Empty(t, byDeed["D010"].CurrentDigest)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.LedgerHeight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntegrityChecks.WithLabelValues(metrics.ResultMissing)))
}

func TestIntegrityVerifier_VerifyAllCancelled(t *testing.T) {
	f := newFixture(t)
	v := NewIntegrityVerifier(f.store, newIntegrityPool(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.VerifyAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
