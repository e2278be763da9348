package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/types"
)

const maxUsageDataPoints = 120

func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	profile, err := s.storage.GetUsageProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			writeJSONError(w, "no usage data uploaded", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get usage profile", slog.Any("error", err))
		writeJSONError(w, "failed to get usage profile", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(profile); err != nil {
		panic(http.ErrAbortHandler)
	}
}

type updateUsageRequest struct {
	DataPoints []types.UsageDataPoint `json:"dataPoints"`
}

func (s *Server) handleUpdateUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var req updateUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateDataPoints(req.DataPoints); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile := types.UsageProfile{
		DataPoints: req.DataPoints,
		Stats:      types.ComputeAggregatedStats(req.DataPoints),
	}

	if err := s.storage.SetUsageProfile(ctx, user.ID, profile); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to set usage profile", slog.Any("error", err))
		writeJSONError(w, "failed to set usage profile", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(profile); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func validateDataPoints(points []types.UsageDataPoint) error {
	if len(points) == 0 {
		return errors.New("at least one data point is required")
	}
	if len(points) > maxUsageDataPoints {
		return fmt.Errorf("too many data points, max is %d", maxUsageDataPoints)
	}
	seen := make(map[string]bool, len(points))
	for i, p := range points {
		if _, err := time.Parse("2006-01", p.Month); err != nil {
			return fmt.Errorf("data point %d: month must be YYYY-MM", i)
		}
		if seen[p.Month] {
			return fmt.Errorf("data point %d: duplicate month %s", i, p.Month)
		}
		seen[p.Month] = true
		if p.KWH < 0 {
			return fmt.Errorf("data point %d: kWh cannot be negative", i)
		}
		if p.Cost < 0 {
			return fmt.Errorf("data point %d: cost cannot be negative", i)
		}
	}
	return nil
}
