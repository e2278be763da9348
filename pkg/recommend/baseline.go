// Package recommend implements the plan scoring, ranking, and savings/risk
// analysis pipeline. It is a pure, synchronous computation over in-memory
// candidate plans; the only external collaborator is the optional explanation
// service consulted when assembling the final recommendations.
package recommend

import (
	"errors"

	"github.com/plansage/plansage/pkg/types"
)

var (
	// ErrMissingUsageData is returned when the usage profile cannot be
	// resolved to a positive annual cost and consumption.
	ErrMissingUsageData = errors.New("missing cost or kWh information")

	// ErrNoEligiblePlans is returned when the budget filter removes every
	// candidate plan.
	ErrNoEligiblePlans = errors.New("no plans found that meet budget constraints")
)

// Baseline derives the user's current annual cost and annual consumption from
// a usage profile. Each value falls back through three tiers: the provided
// aggregate total, the sum of raw data points extrapolated to a year, and
// finally the provided monthly average times 12. Usage data arrives in
// inconsistent shapes (partial years, missing aggregates) so we always prefer
// provided aggregates and only then reconstruct from raw points.
func Baseline(profile types.UsageProfile) (annualCost, annualKWH float64, err error) {
	annualCost = annualize(
		profile.Stats.TotalCost,
		profile.Stats.AverageMonthlyCost,
		profile.DataPoints,
		func(p types.UsageDataPoint) float64 { return p.Cost },
	)
	annualKWH = annualize(
		profile.Stats.TotalKWH,
		profile.Stats.AverageMonthlyKWH,
		profile.DataPoints,
		func(p types.UsageDataPoint) float64 { return p.KWH },
	)
	// Scoring cannot proceed without a positive baseline.
	if annualCost <= 0 || annualKWH <= 0 {
		return 0, 0, ErrMissingUsageData
	}
	return annualCost, annualKWH, nil
}

func annualize(total, monthlyAvg float64, points []types.UsageDataPoint, value func(types.UsageDataPoint) float64) float64 {
	if total > 0 {
		return total
	}
	var sum float64
	for _, p := range points {
		sum += value(p)
	}
	if sum > 0 {
		// Extrapolate partial histories to a full year.
		return sum / float64(len(points)) * 12
	}
	return monthlyAvg * 12
}
