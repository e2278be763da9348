package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/types"
)

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var plans []types.CandidatePlan
	var err error
	if s.showHidden {
		// Raw stored catalog, hidden plans included.
		plans, err = s.storage.ListPlans(ctx)
	} else {
		plans, err = s.catalog.Plans(ctx)
	}
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load plan catalog", slog.Any("error", err))
		writeJSONError(w, "failed to load plan catalog", http.StatusInternalServerError)
		return
	}
	if plans == nil {
		plans = []types.CandidatePlan{}
	}

	if err := json.NewEncoder(w).Encode(plans); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleUpsertPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)
	if !user.Admin {
		writeJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var plan types.CandidatePlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if plan.ID == "" {
		writeJSONError(w, "plan id is required", http.StatusBadRequest)
		return
	}
	if err := plan.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.UpsertPlan(ctx, plan); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to upsert plan", slog.String("planID", plan.ID), slog.Any("error", err))
		writeJSONError(w, "failed to upsert plan", http.StatusInternalServerError)
		return
	}

	log.Ctx(ctx).InfoContext(ctx, "plan upserted", slog.String("planID", plan.ID), slog.String("by", user.ID))

	if err := json.NewEncoder(w).Encode(plan); err != nil {
		panic(http.ErrAbortHandler)
	}
}
