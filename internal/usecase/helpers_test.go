package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/governance/audit"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/repository/memory"
	"landledger.io/registry/internal/service"
)

var regDate = time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)

type eventLog struct {
	mu     sync.Mutex
	events []*domain.DomainEvent
}

func (l *eventLog) Dispatch(_ context.Context, e *domain.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) count(et domain.EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.EventType == et {
			n++
		}
	}
	return n
}

type fixture struct {
	store    *memory.Store
	registry *service.RegistryService
	events   *eventLog
	audit    *audit.Logger
}

// newFixture registers land L001, owners A/B and ACTIVE deed D001 owned by A.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), events: &eventLog{}, audit: audit.NewLogger("")}
	f.registry = service.NewRegistryService(f.store, f.audit, f.events)

	ctx := context.Background()
	_, err := f.registry.CreateLand(ctx, service.LandInput{
		LandNumber: "L001", District: "Galle", Division: "Akmeemana", Area: 1.5, AreaUnit: "Acres", MapReference: "FVP 88",
	}, "")
	require.NoError(t, err)
	_, err = f.registry.CreateLand(ctx, service.LandInput{
		LandNumber: "L002", District: "Galle", Division: "Baddegama", Area: 30, AreaUnit: "Perches", MapReference: "FVP 90",
	}, "")
	require.NoError(t, err)
	_, err = f.registry.CreateOwner(ctx, service.OwnerInput{NIC: "199012345678", FullName: "Amal Fernando"}, "")
	require.NoError(t, err)
	_, err = f.registry.CreateOwner(ctx, service.OwnerInput{NIC: "198598765432", FullName: "Bimali Jayasinghe"}, "")
	require.NoError(t, err)
	_, err = f.registry.CreateDeed(ctx, service.DeedInput{
		DeedNumber: "D001", LandNumber: "L001", OwnerNIC: "199012345678", RegistrationDate: regDate, DeedType: "Sale",
		SurveyPlanNumber: "SP-7", NotaryName: "R. de Mel",
	}, "")
	require.NoError(t, err)
	return f
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}
