package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/recommend"
	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/types"
)

type recommendRequest struct {
	TopN int `json:"topN"`
}

type recommendResponse struct {
	RunID           string                 `json:"runID"`
	GeneratedAt     time.Time              `json:"generatedAt"`
	Baseline        float64                `json:"baseline"`
	Recommendations []types.Recommendation `json:"recommendations"`
	Scored          []types.ScoredPlan     `json:"scored"`
	Preferences     types.Preferences      `json:"preferences"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var req recommendRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	profile, err := s.storage.GetUsageProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			writeJSONError(w, "missing cost or kWh information", http.StatusBadRequest)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get usage profile", slog.Any("error", err))
		writeJSONError(w, "failed to get usage profile", http.StatusInternalServerError)
		return
	}

	prefs, _, err := s.getPreferencesWithMigration(ctx, user.ID)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get preferences", slog.Any("error", err))
		writeJSONError(w, "failed to get preferences", http.StatusInternalServerError)
		return
	}

	plans, err := s.catalog.Plans(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load plan catalog", slog.Any("error", err))
		writeJSONError(w, "failed to load plan catalog", http.StatusInternalServerError)
		return
	}

	res, err := s.engine.Recommend(ctx, profile, prefs, plans, req.TopN)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrMissingUsageData):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, recommend.ErrNoEligiblePlans):
			writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			log.Ctx(ctx).ErrorContext(ctx, "recommendation run failed", slog.Any("error", err))
			writeJSONError(w, "recommendation run failed", http.StatusInternalServerError)
		}
		return
	}

	record := types.RecommendationRecord{
		RunID:           uuid.NewString(),
		UserID:          user.ID,
		GeneratedAt:     time.Now().UTC(),
		Baseline:        res.Baseline,
		Preferences:     prefs,
		Recommendations: res.Recommendations,
	}
	// History is best-effort, a storage hiccup shouldn't fail the run.
	if err := s.storage.InsertRecommendationRun(ctx, record); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to record recommendation run", slog.Any("error", err))
	}

	err = json.NewEncoder(w).Encode(recommendResponse{
		RunID:           record.RunID,
		GeneratedAt:     record.GeneratedAt,
		Baseline:        res.Baseline,
		Recommendations: res.Recommendations,
		Scored:          res.Scored,
		Preferences:     prefs,
	})
	if err != nil {
		panic(http.ErrAbortHandler)
	}
}

// parseTimeRange parses the start and end query parameters. The default range
// is the trailing 30 days ending now.
func parseTimeRange(q url.Values) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %v", err)
		}
		start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %v", err)
		}
		end = t
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.New("end must be after start")
	}
	return start, end, nil
}

func (s *Server) handleRecommendationHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	start, end, err := parseTimeRange(r.URL.Query())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := s.storage.GetRecommendationHistory(ctx, user.ID, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get recommendation history", slog.Any("error", err))
		writeJSONError(w, "failed to get recommendation history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []types.RecommendationRecord{}
	}

	// Historical runs never change so allow brief client caching.
	if end.Before(time.Now().UTC()) {
		w.Header().Set("Cache-Control", "private, max-age=300")
	}

	if err := json.NewEncoder(w).Encode(records); err != nil {
		panic(http.ErrAbortHandler)
	}
}
