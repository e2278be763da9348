package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/plansage/plansage/pkg/catalog"
	"github.com/plansage/plansage/pkg/recommend"
	"github.com/plansage/plansage/pkg/storage"
	"github.com/plansage/plansage/pkg/storage/storagemock"
	"github.com/plansage/plansage/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testServer builds a Server with auth bypassed so every request runs as the
// dev admin user.
func testServer(db storage.Database) *Server {
	return &Server{
		engine:     recommend.NewEngine(nil),
		catalog:    catalog.NewStorageCatalog(db, false),
		storage:    db,
		listenAddr: ":8080",
		bypassAuth: true,
	}
}

func testProfile() types.UsageProfile {
	return types.UsageProfile{
		Stats: types.AggregatedStats{
			TotalKWH:           12000,
			TotalCost:          2400,
			AverageMonthlyKWH:  1000,
			AverageMonthlyCost: 200,
		},
	}
}

func TestHandleRecommend(t *testing.T) {
	t.Run("Happy Path", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetUsageProfile", mock.Anything, "dev").Return(testProfile(), nil)
		mockS.On("GetPreferences", mock.Anything, "dev").Return(types.Preferences{
			CostSavingsPriority: types.CostPriorityHigh,
			FlexibilityMonths:   12,
			SupplierRating:      3,
		}, types.CurrentPreferencesVersion, nil)
		mockS.On("ListPlans", mock.Anything).Return([]types.CandidatePlan{
			{ID: "a", SupplierName: "A", PlanName: "Fixed", ContractType: types.ContractTypeFixed, RatePerKWH: 0.10},
			{ID: "b", SupplierName: "B", PlanName: "Cheap", ContractType: types.ContractTypeFixed, RatePerKWH: 0.08},
		}, nil)
		mockS.On("InsertRecommendationRun", mock.Anything, mock.Anything).Return(nil)

		srv := testServer(mockS)
		req := httptest.NewRequest("POST", "/api/recommendations", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp recommendResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.RunID)
		assert.Equal(t, 2400.0, resp.Baseline)
		require.Len(t, resp.Recommendations, 2)
		assert.Equal(t, "b", resp.Recommendations[0].PlanID)
		assert.Equal(t, 1, resp.Recommendations[0].Rank)
		assert.NotEmpty(t, resp.Recommendations[0].Explanation)
		mockS.AssertCalled(t, "InsertRecommendationRun", mock.Anything, mock.Anything)
	})

	t.Run("Missing Usage Data Is 400", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetUsageProfile", mock.Anything, "dev").Return(types.UsageProfile{}, storage.ErrProfileNotFound)

		srv := testServer(mockS)
		req := httptest.NewRequest("POST", "/api/recommendations", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing cost or kWh information")
	})

	t.Run("No Eligible Plans Is 404", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetUsageProfile", mock.Anything, "dev").Return(testProfile(), nil)
		mockS.On("GetPreferences", mock.Anything, "dev").Return(types.Preferences{
			CostSavingsPriority: types.CostPriorityMedium,
			FlexibilityMonths:   12,
			SupplierRating:      3,
			Budget:              &types.BudgetConstraints{MaxAnnualCost: floatPtr(100)},
		}, types.CurrentPreferencesVersion, nil)
		mockS.On("ListPlans", mock.Anything).Return([]types.CandidatePlan{
			{ID: "a", ContractType: types.ContractTypeFixed, RatePerKWH: 0.10},
		}, nil)

		srv := testServer(mockS)
		req := httptest.NewRequest("POST", "/api/recommendations", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "no plans found that meet budget constraints")
	})

	t.Run("History Write Failure Does Not Fail The Run", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetUsageProfile", mock.Anything, "dev").Return(testProfile(), nil)
		mockS.On("GetPreferences", mock.Anything, "dev").Return(types.Preferences{
			CostSavingsPriority: types.CostPriorityMedium,
			FlexibilityMonths:   12,
			SupplierRating:      3,
		}, types.CurrentPreferencesVersion, nil)
		mockS.On("ListPlans", mock.Anything).Return([]types.CandidatePlan{
			{ID: "a", ContractType: types.ContractTypeFixed, RatePerKWH: 0.10},
		}, nil)
		mockS.On("InsertRecommendationRun", mock.Anything, mock.Anything).Return(assert.AnError)

		srv := testServer(mockS)
		req := httptest.NewRequest("POST", "/api/recommendations", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandlePreferences(t *testing.T) {
	t.Run("Get Migrates Old Versions", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetPreferences", mock.Anything, "dev").Return(types.Preferences{}, 0, nil)
		mockS.On("SetPreferences", mock.Anything, "dev", mock.Anything, types.CurrentPreferencesVersion).Return(nil)

		srv := testServer(mockS)
		req := httptest.NewRequest("GET", "/api/preferences", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var prefs types.Preferences
		require.NoError(t, json.NewDecoder(w.Body).Decode(&prefs))
		assert.Equal(t, types.CostPriorityMedium, prefs.CostSavingsPriority)
		assert.Equal(t, 12, prefs.FlexibilityMonths)
		assert.Equal(t, 3.0, prefs.SupplierRating)
		mockS.AssertCalled(t, "SetPreferences", mock.Anything, "dev", mock.Anything, types.CurrentPreferencesVersion)
	})

	t.Run("Update Validates", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		srv := testServer(mockS)

		body, _ := json.Marshal(types.Preferences{
			CostSavingsPriority: "urgent",
		})
		req := httptest.NewRequest("POST", "/api/preferences", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockS.AssertNotCalled(t, "SetPreferences", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Update Persists Current Version", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("SetPreferences", mock.Anything, "dev", mock.Anything, types.CurrentPreferencesVersion).Return(nil)

		srv := testServer(mockS)
		body, _ := json.Marshal(types.Preferences{
			CostSavingsPriority: types.CostPriorityLow,
			FlexibilityMonths:   6,
			SupplierRating:      4,
		})
		req := httptest.NewRequest("POST", "/api/preferences", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockS.AssertExpectations(t)
	})
}

func TestHandleUsage(t *testing.T) {
	t.Run("Update Computes Stats", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("SetUsageProfile", mock.Anything, "dev", mock.Anything).Return(nil)

		srv := testServer(mockS)
		body, _ := json.Marshal(updateUsageRequest{
			DataPoints: []types.UsageDataPoint{
				{Month: "2025-01", KWH: 900, Cost: 120},
				{Month: "2025-02", KWH: 1100, Cost: 150},
			},
		})
		req := httptest.NewRequest("POST", "/api/usage", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var profile types.UsageProfile
		require.NoError(t, json.NewDecoder(w.Body).Decode(&profile))
		assert.Equal(t, 2000.0, profile.Stats.TotalKWH)
		assert.Equal(t, "2025-02", profile.Stats.PeakMonth)
	})

	t.Run("Rejects Bad Months", func(t *testing.T) {
		srv := testServer(&storagemock.MockDatabase{})
		body, _ := json.Marshal(updateUsageRequest{
			DataPoints: []types.UsageDataPoint{{Month: "January", KWH: 900}},
		})
		req := httptest.NewRequest("POST", "/api/usage", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejects Duplicate Months", func(t *testing.T) {
		srv := testServer(&storagemock.MockDatabase{})
		body, _ := json.Marshal(updateUsageRequest{
			DataPoints: []types.UsageDataPoint{
				{Month: "2025-01", KWH: 900},
				{Month: "2025-01", KWH: 950},
			},
		})
		req := httptest.NewRequest("POST", "/api/usage", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get Missing Profile Is 404", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetUsageProfile", mock.Anything, "dev").Return(types.UsageProfile{}, storage.ErrProfileNotFound)

		srv := testServer(mockS)
		req := httptest.NewRequest("GET", "/api/usage", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandlePlans(t *testing.T) {
	t.Run("Admin Upserts Plan", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("UpsertPlan", mock.Anything, mock.Anything).Return(nil)

		srv := testServer(mockS)
		body, _ := json.Marshal(types.CandidatePlan{
			ID:           "new-plan",
			SupplierName: "S",
			PlanName:     "P",
			ContractType: types.ContractTypeFixed,
			RatePerKWH:   0.11,
		})
		req := httptest.NewRequest("POST", "/api/admin/plans", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockS.AssertExpectations(t)
	})

	t.Run("Non Admin Forbidden", func(t *testing.T) {
		srv := testServer(&storagemock.MockDatabase{})

		// calling the handler directly without a user in context
		req := httptest.NewRequest("POST", "/api/admin/plans", bytes.NewReader([]byte("{}")))
		w := httptest.NewRecorder()
		srv.handleUpsertPlan(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Invalid Plan Rejected", func(t *testing.T) {
		srv := testServer(&storagemock.MockDatabase{})
		body, _ := json.Marshal(types.CandidatePlan{
			ID:           "bad",
			ContractType: types.ContractTypeFixed,
			RatePerKWH:   -1,
		})
		req := httptest.NewRequest("POST", "/api/admin/plans", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List Uses Catalog", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("ListPlans", mock.Anything).Return([]types.CandidatePlan{
			{ID: "a", ContractType: types.ContractTypeFixed, RatePerKWH: 0.10},
		}, nil)

		srv := testServer(mockS)
		req := httptest.NewRequest("GET", "/api/list/plans", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var plans []types.CandidatePlan
		require.NoError(t, json.NewDecoder(w.Body).Decode(&plans))
		require.Len(t, plans, 1)
		assert.Equal(t, "a", plans[0].ID)
	})
}

func TestHandleFeedback(t *testing.T) {
	t.Run("Valid Feedback Stored", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("InsertFeedback", mock.Anything, mock.MatchedBy(func(f types.Feedback) bool {
			return f.Sentiment == "positive" && f.UserID == "dev" && f.ID != ""
		})).Return(nil)

		srv := testServer(mockS)
		body, _ := json.Marshal(feedbackRequest{Sentiment: "positive", Comment: "great"})
		req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockS.AssertExpectations(t)
	})

	t.Run("Bad Sentiment Rejected", func(t *testing.T) {
		srv := testServer(&storagemock.MockDatabase{})
		body, _ := json.Marshal(feedbackRequest{Sentiment: "meh"})
		req := httptest.NewRequest("POST", "/api/feedback", bytes.NewReader(body))
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleRecommendationHistory(t *testing.T) {
	t.Run("Default Range", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("GetRecommendationHistory", mock.Anything, "dev", mock.Anything, mock.Anything).
			Return([]types.RecommendationRecord{}, nil)

		srv := testServer(mockS)
		req := httptest.NewRequest("GET", "/api/recommendations/history", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("Bad Range Rejected", func(t *testing.T) {
		srv := testServer(&storagemock.MockDatabase{})
		req := httptest.NewRequest("GET", "/api/recommendations/history?start=notatime", nil)
		w := httptest.NewRecorder()
		srv.setupHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleAuthStatus(t *testing.T) {
	srv := testServer(&storagemock.MockDatabase{})
	req := httptest.NewRequest("GET", "/api/auth/status", nil)
	w := httptest.NewRecorder()
	srv.setupHandler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var status authStatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.True(t, status.LoggedIn)
	assert.False(t, status.AuthRequired)
}

func TestSPAHandler(t *testing.T) {
	testFS := fstest.MapFS{
		"index.html":     {Data: []byte("<html>index</html>")},
		"assets/main.js": {Data: []byte("console.log('hello');")},
	}

	srv := testServer(&storagemock.MockDatabase{})
	mux := http.NewServeMux()
	fileServer := http.FileServer(http.FS(testFS))
	mux.Handle("/", srv.webHandler(testFS, fileServer))

	t.Run("Serve Existing File", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/assets/main.js", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "console.log('hello');", w.Body.String())
	})

	t.Run("Unknown Path Falls Back To Index", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/preferences", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "<html>index</html>", w.Body.String())
	})

	t.Run("Well Known Is Not Rewritten", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/.well-known/acme-challenge/token", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func floatPtr(f float64) *float64 { return &f }
