package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/plansage/plansage/pkg/catalog"
	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/types"
)

// Seeds the firestore emulator with the static plan catalog and a demo user
// with a year of synthetic usage so the UI has something to show.
func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	db := storage.Configured()
	lflag.Configure()

	ctx := context.Background()

	log.Ctx(ctx).InfoContext(ctx, "seeding mock data")

	for _, plan := range catalog.DefaultPlans() {
		if err := db.UpsertPlan(ctx, plan); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed plan", slog.String("planID", plan.ID), "error", err)
			os.Exit(1)
		}
	}

	demo := types.User{ID: "demo", Email: "demo@localhost"}
	if err := db.CreateUser(ctx, demo); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed user", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// A year of monthly usage ending last month, with a summer peak.
	points := make([]types.UsageDataPoint, 0, 12)
	month := time.Now().AddDate(-1, 0, 0)
	for i := 0; i < 12; i++ {
		kwh := 750.0 + rng.Float64()*150
		if m := month.Month(); m >= time.June && m <= time.September {
			// AC load
			kwh += 350 + rng.Float64()*150
		}
		points = append(points, types.UsageDataPoint{
			Month: month.Format("2006-01"),
			KWH:   kwh,
			Cost:  kwh * 0.13,
		})
		month = month.AddDate(0, 1, 0)
	}

	profile := types.UsageProfile{
		DataPoints: points,
		Stats:      types.ComputeAggregatedStats(points),
	}
	if err := db.SetUsageProfile(ctx, demo.ID, profile); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed usage profile", "error", err)
		os.Exit(1)
	}

	prefs := types.Preferences{
		CostSavingsPriority:     types.CostPriorityHigh,
		FlexibilityMonths:       12,
		RenewablePercentage:     25,
		SupplierRating:          3.5,
		ContractType:            types.ContractTypeFixed,
		TerminationFeeTolerance: 150,
	}
	if err := db.SetPreferences(ctx, demo.ID, prefs, types.CurrentPreferencesVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed preferences", "error", err)
		os.Exit(1)
	}

	if err := db.Close(); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
	}

	fmt.Printf("seeded %d plans and demo user %q\n", len(catalog.DefaultPlans()), demo.ID)
}
