package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/plansage/plansage/pkg/types"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("usage profile not found")
)

// Database defines the interface for persisting users, preferences, usage
// profiles, the plan catalog, and recommendation history.
type Database interface {
	// Preferences
	GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error)
	SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error

	// Usage profiles
	GetUsageProfile(ctx context.Context, userID string) (types.UsageProfile, error)
	SetUsageProfile(ctx context.Context, userID string, profile types.UsageProfile) error

	// Plan catalog
	ListPlans(ctx context.Context) ([]types.CandidatePlan, error)
	UpsertPlan(ctx context.Context, plan types.CandidatePlan) error

	// Recommendation history
	InsertRecommendationRun(ctx context.Context, record types.RecommendationRecord) error
	GetRecommendationHistory(ctx context.Context, userID string, start, end time.Time) ([]types.RecommendationRecord, error)

	// Feedback
	InsertFeedback(ctx context.Context, feedback types.Feedback) error
	ListFeedback(ctx context.Context) ([]types.Feedback, error)

	// Users
	GetUser(ctx context.Context, userID string) (types.User, error)
	CreateUser(ctx context.Context, user types.User) error
	UpdateUser(ctx context.Context, user types.User) error

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
