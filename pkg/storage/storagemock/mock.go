package storagemock

import (
	"context"
	"time"

	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error) {
	args := m.Called(ctx, userID)
	// return empty if not specified, or checks args
	if len(args) > 0 {
		return args.Get(0).(types.Preferences), args.Int(1), args.Error(2)
	}
	return types.Preferences{}, 0, nil
}

func (m *MockDatabase) SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error {
	args := m.Called(ctx, userID, prefs, version)
	return args.Error(0)
}

func (m *MockDatabase) GetUsageProfile(ctx context.Context, userID string) (types.UsageProfile, error) {
	args := m.Called(ctx, userID)
	if len(args) > 0 {
		return args.Get(0).(types.UsageProfile), args.Error(1)
	}
	return types.UsageProfile{}, nil
}

func (m *MockDatabase) SetUsageProfile(ctx context.Context, userID string, profile types.UsageProfile) error {
	args := m.Called(ctx, userID, profile)
	return args.Error(0)
}

func (m *MockDatabase) ListPlans(ctx context.Context) ([]types.CandidatePlan, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		return args.Get(0).([]types.CandidatePlan), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) UpsertPlan(ctx context.Context, plan types.CandidatePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockDatabase) InsertRecommendationRun(ctx context.Context, record types.RecommendationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDatabase) GetRecommendationHistory(ctx context.Context, userID string, start, end time.Time) ([]types.RecommendationRecord, error) {
	args := m.Called(ctx, userID, start, end)
	if len(args) > 0 {
		return args.Get(0).([]types.RecommendationRecord), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) InsertFeedback(ctx context.Context, feedback types.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *MockDatabase) ListFeedback(ctx context.Context) ([]types.Feedback, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		return args.Get(0).([]types.Feedback), args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) GetUser(ctx context.Context, userID string) (types.User, error) {
	args := m.Called(ctx, userID)
	if len(args) > 0 {
		return args.Get(0).(types.User), args.Error(1)
	}
	return types.User{}, nil
}

func (m *MockDatabase) CreateUser(ctx context.Context, user types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockDatabase) UpdateUser(ctx context.Context, user types.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
