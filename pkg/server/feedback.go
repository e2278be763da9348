package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/types"
)

const maxFeedbackCommentLength = 2000

type feedbackRequest struct {
	Sentiment string `json:"sentiment"`
	Comment   string `json:"comment"`
	RunID     string `json:"runID"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Sentiment != "positive" && req.Sentiment != "negative" {
		writeJSONError(w, "sentiment must be positive or negative", http.StatusBadRequest)
		return
	}
	if len(req.Comment) > maxFeedbackCommentLength {
		writeJSONError(w, "comment too long", http.StatusBadRequest)
		return
	}

	feedback := types.Feedback{
		ID:        uuid.NewString(),
		Sentiment: req.Sentiment,
		Comment:   req.Comment,
		RunID:     req.RunID,
		UserID:    user.ID,
		Timestamp: time.Now().UTC(),
	}

	if err := s.storage.InsertFeedback(ctx, feedback); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to insert feedback", slog.Any("error", err))
		writeJSONError(w, "failed to insert feedback", http.StatusInternalServerError)
		return
	}

	log.Ctx(ctx).InfoContext(ctx, "feedback received",
		slog.String("id", feedback.ID), slog.String("sentiment", feedback.Sentiment))

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)
	if !user.Admin {
		writeJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	feedback, err := s.storage.ListFeedback(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list feedback", slog.Any("error", err))
		writeJSONError(w, "failed to list feedback", http.StatusInternalServerError)
		return
	}
	if feedback == nil {
		feedback = []types.Feedback{}
	}

	if err := json.NewEncoder(w).Encode(feedback); err != nil {
		panic(http.ErrAbortHandler)
	}
}
