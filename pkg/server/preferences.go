package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/types"
)

// getPreferencesWithMigration loads the stored preferences and, when they were
// written by an older version, migrates and persists them before returning.
func (s *Server) getPreferencesWithMigration(ctx context.Context, userID string) (types.Preferences, int, error) {
	prefs, version, err := s.storage.GetPreferences(ctx, userID)
	if err != nil {
		return types.Preferences{}, 0, err
	}
	if version < types.CurrentPreferencesVersion {
		var migrated bool
		prefs, migrated, err = types.MigratePreferences(prefs, version)
		if err != nil {
			return types.Preferences{}, 0, err
		}
		if migrated {
			log.Ctx(ctx).InfoContext(ctx, "migrated preferences",
				slog.String("userID", userID), slog.Int("fromVersion", version))
		}
		if err := s.storage.SetPreferences(ctx, userID, prefs, types.CurrentPreferencesVersion); err != nil {
			// Migration applies again next read, so just log it.
			log.Ctx(ctx).WarnContext(ctx, "failed to persist migrated preferences",
				slog.String("userID", userID), slog.Any("error", err))
		}
		version = types.CurrentPreferencesVersion
	}
	return prefs, version, nil
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	prefs, _, err := s.getPreferencesWithMigration(ctx, user.ID)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get preferences", slog.Any("error", err))
		writeJSONError(w, "failed to get preferences", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(prefs); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var prefs types.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := prefs.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.SetPreferences(ctx, user.ID, prefs, types.CurrentPreferencesVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to set preferences", slog.Any("error", err))
		writeJSONError(w, "failed to set preferences", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(prefs); err != nil {
		panic(http.ErrAbortHandler)
	}
}
