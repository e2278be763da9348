package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Records are stored as JSON blobs in a "json" field so the Go
// structs stay the single source of truth for encoding.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// Project ID verification could be here, but we allow empty if inferred.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) userCollection(userID, name string) (*firestore.CollectionRef, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	return f.client.Collection("users").Doc(userID).Collection(name), nil
}

// GetPreferences retrieves the user's preferences from the "config/preferences"
// document. Missing preferences are not an error; callers get zero-value
// preferences with version 0 and migrate defaults in.
func (f *FirestoreProvider) GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error) {
	coll, err := f.userCollection(userID, "config")
	if err != nil {
		return types.Preferences{}, 0, err
	}
	doc, err := coll.Doc("preferences").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Preferences{}, 0, nil
		}
		return types.Preferences{}, 0, fmt.Errorf("failed to fetch preferences doc: %w", err)
	}

	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	var prefs types.Preferences
	if err := f.decodeDoc(ctx, doc, "preferences", userID, &prefs); err != nil {
		return types.Preferences{}, 0, err
	}
	return prefs, version, nil
}

// SetPreferences saves the user's preferences to the "config/preferences"
// document as a JSON string alongside the schema version.
func (f *FirestoreProvider) SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error {
	jsonBytes, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	coll, err := f.userCollection(userID, "config")
	if err != nil {
		return err
	}
	_, err = coll.Doc("preferences").Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetUsageProfile retrieves the user's usage profile from the "config/usage"
// document.
func (f *FirestoreProvider) GetUsageProfile(ctx context.Context, userID string) (types.UsageProfile, error) {
	coll, err := f.userCollection(userID, "config")
	if err != nil {
		return types.UsageProfile{}, err
	}
	doc, err := coll.Doc("usage").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.UsageProfile{}, ErrProfileNotFound
		}
		return types.UsageProfile{}, fmt.Errorf("failed to fetch usage doc: %w", err)
	}

	var profile types.UsageProfile
	if err := f.decodeDoc(ctx, doc, "usage profile", userID, &profile); err != nil {
		return types.UsageProfile{}, err
	}
	return profile, nil
}

// SetUsageProfile saves the user's usage profile to the "config/usage" document.
func (f *FirestoreProvider) SetUsageProfile(ctx context.Context, userID string, profile types.UsageProfile) error {
	jsonBytes, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal usage profile: %w", err)
	}

	coll, err := f.userCollection(userID, "config")
	if err != nil {
		return err
	}
	_, err = coll.Doc("usage").Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to save usage profile: %w", err)
	}
	return nil
}

// ListPlans retrieves the full plan catalog from the "plans" collection.
func (f *FirestoreProvider) ListPlans(ctx context.Context) ([]types.CandidatePlan, error) {
	iter := f.client.Collection("plans").Documents(ctx)
	defer iter.Stop()

	var plans []types.CandidatePlan
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating plans: %w", err)
		}

		var plan types.CandidatePlan
		if err := f.decodeDoc(ctx, doc, "plan", doc.Ref.ID, &plan); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "skipping malformed plan doc", slog.String("planID", doc.Ref.ID), slog.Any("err", err))
			continue
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// UpsertPlan adds or updates a plan in the "plans" collection keyed by plan ID.
func (f *FirestoreProvider) UpsertPlan(ctx context.Context, plan types.CandidatePlan) error {
	if plan.ID == "" {
		return fmt.Errorf("plan missing id")
	}
	jsonBytes, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	_, err = f.client.Collection("plans").Doc(plan.ID).Set(ctx, map[string]interface{}{
		"json": string(jsonBytes),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert plan %s: %w", plan.ID, err)
	}
	return nil
}

// InsertRecommendationRun adds a recommendation run to the user's
// "recommendation_history" collection. The document ID is the RFC3339
// timestamp for lexicographic ordering and efficient range queries.
func (f *FirestoreProvider) InsertRecommendationRun(ctx context.Context, record types.RecommendationRecord) error {
	if record.GeneratedAt.IsZero() {
		return fmt.Errorf("recommendation record missing timestamp")
	}
	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation record: %w", err)
	}

	coll, err := f.userCollection(record.UserID, "recommendation_history")
	if err != nil {
		return err
	}
	docID := record.GeneratedAt.UTC().Format(time.RFC3339)
	_, err = coll.Doc(docID).Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": record.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert recommendation record: %w", err)
	}
	return nil
}

// GetRecommendationHistory retrieves recommendation runs within the specified
// time range. Uses document ID range queries for efficient filtering without
// reading all documents.
func (f *FirestoreProvider) GetRecommendationHistory(ctx context.Context, userID string, start, end time.Time) ([]types.RecommendationRecord, error) {
	startDocID := start.UTC().Format(time.RFC3339)
	endDocID := end.UTC().Format(time.RFC3339)

	coll, err := f.userCollection(userID, "recommendation_history")
	if err != nil {
		return nil, err
	}
	iter := coll.
		Where(firestore.DocumentID, ">=", coll.Doc(startDocID)).
		Where(firestore.DocumentID, "<", coll.Doc(endDocID)).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var records []types.RecommendationRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating recommendation history: %w", err)
		}

		var record types.RecommendationRecord
		if err := f.decodeDoc(ctx, doc, "recommendation record", userID, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// InsertFeedback adds a feedback record to the "feedback" collection.
func (f *FirestoreProvider) InsertFeedback(ctx context.Context, feedback types.Feedback) error {
	if feedback.ID == "" {
		return fmt.Errorf("feedback missing id")
	}
	jsonBytes, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}
	_, err = f.client.Collection("feedback").Doc(feedback.ID).Create(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"timestamp": feedback.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// ListFeedback retrieves all feedback records.
func (f *FirestoreProvider) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	iter := f.client.Collection("feedback").OrderBy("timestamp", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var feedbacks []types.Feedback
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating feedback: %w", err)
		}

		var fb types.Feedback
		if err := f.decodeDoc(ctx, doc, "feedback", doc.Ref.ID, &fb); err != nil {
			log.Ctx(ctx).WarnContext(ctx, "skipping malformed feedback doc", slog.String("feedbackID", doc.Ref.ID), slog.Any("err", err))
			continue
		}
		feedbacks = append(feedbacks, fb)
	}
	return feedbacks, nil
}

// GetUser retrieves a user from the "users" collection.
func (f *FirestoreProvider) GetUser(ctx context.Context, userID string) (types.User, error) {
	doc, err := f.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return types.User{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	var user types.User
	if err := f.decodeDoc(ctx, doc, "user", userID, &user); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user document in the "users" collection.
func (f *FirestoreProvider) CreateUser(ctx context.Context, user types.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}
	_, err = f.client.Collection("users").Doc(user.ID).Create(ctx, map[string]interface{}{
		"json": string(userJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}

// UpdateUser updates an existing user document in the "users" collection.
func (f *FirestoreProvider) UpdateUser(ctx context.Context, user types.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user %s: %w", user.ID, err)
	}
	_, err = f.client.Collection("users").Doc(user.ID).Set(ctx, map[string]interface{}{
		"json": string(userJSON),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

// decodeDoc unmarshals the "json" field of a document into out.
func (f *FirestoreProvider) decodeDoc(ctx context.Context, doc *firestore.DocumentSnapshot, kind, id string, out interface{}) error {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "doc missing json", slog.String("kind", kind), slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("%s document %s missing 'json' field: %w", kind, id, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "doc json not string", slog.String("kind", kind), slog.String("id", id))
		return fmt.Errorf("%s document %s 'json' field is not a string", kind, id)
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal doc json", slog.String("kind", kind), slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("failed to unmarshal %s (id=%s): %w", kind, id, err)
	}
	return nil
}
