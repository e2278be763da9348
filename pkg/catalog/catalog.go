// Package catalog supplies the candidate plans evaluated during a
// recommendation run.
package catalog

import (
	"context"
	"log/slog"

	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/types"
)

// Source provides the candidate plans for one scoring pass. The core does not
// care whether plans come from a database, an API, or the static table.
type Source interface {
	Plans(ctx context.Context) ([]types.CandidatePlan, error)
}

// StorageCatalog reads the plan catalog from storage, falling back to the
// built-in static plans when the store is empty. Plans that fail validation
// never reach the scoring pipeline.
type StorageCatalog struct {
	db            storage.Database
	includeHidden bool
}

// NewStorageCatalog creates a catalog backed by the given database.
func NewStorageCatalog(db storage.Database, includeHidden bool) *StorageCatalog {
	return &StorageCatalog{db: db, includeHidden: includeHidden}
}

// Plans implements the Source interface.
func (c *StorageCatalog) Plans(ctx context.Context) ([]types.CandidatePlan, error) {
	plans, err := c.db.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		log.Ctx(ctx).InfoContext(ctx, "plan catalog empty, using static plans")
		plans = DefaultPlans()
	}

	valid := make([]types.CandidatePlan, 0, len(plans))
	for _, plan := range plans {
		if plan.Hidden && !c.includeHidden {
			continue
		}
		if err := plan.Validate(); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "excluding invalid catalog plan", slog.String("planID", plan.ID), slog.Any("error", err))
			continue
		}
		valid = append(valid, plan)
	}
	return valid, nil
}

// Static is a Source that always returns the built-in plan table. Used by
// tests and as a bootstrap before any catalog has been seeded.
type Static struct{}

// Plans implements the Source interface.
func (Static) Plans(context.Context) ([]types.CandidatePlan, error) {
	return DefaultPlans(), nil
}
