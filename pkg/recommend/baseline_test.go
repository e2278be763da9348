package recommend

import (
	"testing"

	"github.com/plansage/plansage/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseline(t *testing.T) {
	t.Run("Prefers Aggregate Totals", func(t *testing.T) {
		profile := types.UsageProfile{
			DataPoints: []types.UsageDataPoint{
				{Month: "2025-01", KWH: 100, Cost: 20},
			},
			Stats: types.AggregatedStats{
				TotalKWH:  12000,
				TotalCost: 2400,
			},
		}

		cost, kwh, err := Baseline(profile)
		require.NoError(t, err)
		assert.Equal(t, 2400.0, cost)
		assert.Equal(t, 12000.0, kwh)
	})

	t.Run("Extrapolates Partial Data Points", func(t *testing.T) {
		// 6 months at 100 kWh / $15 should extrapolate to a full year.
		points := make([]types.UsageDataPoint, 6)
		for i := range points {
			points[i] = types.UsageDataPoint{KWH: 100, Cost: 15}
		}

		cost, kwh, err := Baseline(types.UsageProfile{DataPoints: points})
		require.NoError(t, err)
		assert.Equal(t, 180.0, cost)
		assert.Equal(t, 1200.0, kwh)
	})

	t.Run("Falls Back To Monthly Averages", func(t *testing.T) {
		profile := types.UsageProfile{
			Stats: types.AggregatedStats{
				AverageMonthlyKWH:  800,
				AverageMonthlyCost: 120,
			},
		}

		cost, kwh, err := Baseline(profile)
		require.NoError(t, err)
		assert.Equal(t, 1440.0, cost)
		assert.Equal(t, 9600.0, kwh)
	})

	t.Run("Mixed Tiers", func(t *testing.T) {
		// Cost comes from the aggregate total, kWh from the raw points.
		profile := types.UsageProfile{
			DataPoints: []types.UsageDataPoint{
				{KWH: 900},
				{KWH: 1100},
			},
			Stats: types.AggregatedStats{TotalCost: 2400},
		}

		cost, kwh, err := Baseline(profile)
		require.NoError(t, err)
		assert.Equal(t, 2400.0, cost)
		assert.Equal(t, 12000.0, kwh)
	})

	t.Run("Empty Profile Fails", func(t *testing.T) {
		_, _, err := Baseline(types.UsageProfile{})
		assert.ErrorIs(t, err, ErrMissingUsageData)
	})

	t.Run("Missing KWH Fails", func(t *testing.T) {
		profile := types.UsageProfile{
			Stats: types.AggregatedStats{TotalCost: 2400},
		}
		_, _, err := Baseline(profile)
		assert.ErrorIs(t, err, ErrMissingUsageData)
	})
}
