// Package main loads lands, owners, deeds and transfers from a YAML file
// into the registry. Records that already exist are skipped, so a seed file
// can be applied more than once.
//
// Import Path: landledger.io/registry/cmd/seed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"landledger.io/registry/internal/config"
	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/governance/audit"
	"landledger.io/registry/internal/infrastructure"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/repository/postgres"
	"landledger.io/registry/internal/service"
	"landledger.io/registry/internal/usecase"
)

// seedActor attributes seeded records in the audit log.
const seedActor = "seed"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "seed.yaml", "YAML seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	data, err := parseSeed(raw)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Info("Starting data seeding...", zap.String("file", *file))
	summary, err := apply(ctx, postgres.NewStore(db.Pool), audit.NewLogger(cfg.Audit.DefaultActor), data)
	if err != nil {
		return err
	}
	logger.Info("Data seeding completed successfully",
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

type seedFile struct {
	Lands     []seedLand     `yaml:"lands"`
	Owners    []seedOwner    `yaml:"owners"`
	Deeds     []seedDeed     `yaml:"deeds"`
	Transfers []seedTransfer `yaml:"transfers"`
}

type seedLand struct {
	LandNumber    string  `yaml:"landNumber"`
	District      string  `yaml:"district"`
	Division      string  `yaml:"division"`
	LocalDivision string  `yaml:"localDivision"`
	Area          float64 `yaml:"area"`
	AreaUnit      string  `yaml:"areaUnit"`
	MapReference  string  `yaml:"mapReference"`
}

type seedOwner struct {
	NIC               string `yaml:"nic"`
	FullName          string `yaml:"fullName"`
	Address           string `yaml:"address"`
	ContactNumber     string `yaml:"contactNumber"`
	PreviousOwnerName string `yaml:"previousOwnerName"`
}

type seedDeed struct {
	DeedNumber       string `yaml:"deedNumber"`
	LandNumber       string `yaml:"landNumber"`
	OwnerNIC         string `yaml:"ownerNic"`
	RegistrationDate string `yaml:"registrationDate"`
	DeedType         string `yaml:"deedType"`
	SurveyPlanNumber string `yaml:"surveyPlanNumber"`
	NotaryName       string `yaml:"notaryName"`
	Notes            string `yaml:"notes"`
}

// seedTransfer supersedes From with the deed described by the embedded fields.
type seedTransfer struct {
	From     string `yaml:"from"`
	seedDeed `yaml:",inline"`
}

func parseSeed(raw []byte) (*seedFile, error) {
	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &data, nil
}

type seedSummary struct {
	Created int
	Skipped int
}

// apply writes data in dependency order: lands, owners, deeds, transfers.
func apply(ctx context.Context, store repository.Store, auditLogger *audit.Logger, data *seedFile) (seedSummary, error) {
	registry := service.NewRegistryService(store, auditLogger, nil)
	transfers := usecase.NewTransferWorkflow(store, auditLogger, nil)

	var summary seedSummary
	count := func(kind, id string, err error) error {
		switch {
		case err == nil:
			summary.Created++
			return nil
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidState):
			logger.Info("Seed record already present, skipping", zap.String("kind", kind), zap.String("id", id))
			summary.Skipped++
			return nil
		default:
			return fmt.Errorf("seed %s %s: %w", kind, id, err)
		}
	}

	for _, l := range data.Lands {
		_, err := registry.CreateLand(ctx, service.LandInput{
			LandNumber:    l.LandNumber,
			District:      l.District,
			Division:      l.Division,
			LocalDivision: l.LocalDivision,
			Area:          l.Area,
			AreaUnit:      l.AreaUnit,
			MapReference:  l.MapReference,
		}, seedActor)
		if err := count("land", l.LandNumber, err); err != nil {
			return summary, err
		}
	}

	for _, o := range data.Owners {
		_, err := registry.CreateOwner(ctx, service.OwnerInput{
			NIC:               o.NIC,
			FullName:          o.FullName,
			Address:           o.Address,
			ContactNumber:     o.ContactNumber,
			PreviousOwnerName: o.PreviousOwnerName,
		}, seedActor)
		if err := count("owner", o.NIC, err); err != nil {
			return summary, err
		}
	}

	for _, d := range data.Deeds {
		date, err := time.Parse(domain.DateLayout, d.RegistrationDate)
		if err != nil {
			return summary, fmt.Errorf("seed deed %s: registrationDate: %w", d.DeedNumber, err)
		}
		_, err = registry.CreateDeed(ctx, service.DeedInput{
			DeedNumber:       d.DeedNumber,
			LandNumber:       d.LandNumber,
			OwnerNIC:         d.OwnerNIC,
			RegistrationDate: date,
			DeedType:         d.DeedType,
			SurveyPlanNumber: d.SurveyPlanNumber,
			NotaryName:       d.NotaryName,
			Notes:            d.Notes,
		}, seedActor)
		if err := count("deed", d.DeedNumber, err); err != nil {
			return summary, err
		}
	}

	for _, t := range data.Transfers {
		date, err := time.Parse(domain.DateLayout, t.RegistrationDate)
		if err != nil {
			return summary, fmt.Errorf("seed transfer of %s: registrationDate: %w", t.From, err)
		}
		_, err = transfers.Transfer(ctx, t.From, usecase.TransferInput{
			DeedNumber:       t.DeedNumber,
			LandNumber:       t.LandNumber,
			OwnerNIC:         t.OwnerNIC,
			RegistrationDate: date,
			DeedType:         t.DeedType,
			SurveyPlanNumber: t.SurveyPlanNumber,
			NotaryName:       t.NotaryName,
			Notes:            t.Notes,
		}, seedActor)
		if err := count("transfer", t.From, err); err != nil {
			return summary, err
		}
	}

	return summary, nil
}
