package recommend

import (
	"math"

	"github.com/plansage/plansage/pkg/types"
)

// ProjectAnnualCost computes a plan's projected annual cost for the given
// annual consumption: supply rate times kWh plus twelve months of any
// recurring fee.
func ProjectAnnualCost(plan types.CandidatePlan, annualKWH float64) float64 {
	annual := plan.RatePerKWH * annualKWH
	if plan.MonthlyFee != nil {
		annual += *plan.MonthlyFee * 12
	}
	return annual
}

// CalculateSavings compares a plan's projected annual cost to the baseline.
// Positive annual savings means the plan is cheaper than the current plan;
// negative means more expensive. Values are not clamped.
func CalculateSavings(currentAnnualCost, planAnnualCost float64) types.Savings {
	s := types.Savings{
		AnnualSavings: currentAnnualCost - planAnnualCost,
	}
	s.MonthlySavings = s.AnnualSavings / 12
	if currentAnnualCost > 0 {
		s.PercentageSavings = s.AnnualSavings / currentAnnualCost * 100
	}
	return s
}

// PaybackMonths computes how many months of savings it takes to recoup an
// upfront cost such as an early termination fee, rounded up. It returns nil
// when there is nothing to recoup or when recouping never happens.
func PaybackMonths(upfrontCosts, monthlySavings float64) *int {
	if upfrontCosts <= 0 || monthlySavings <= 0 {
		return nil
	}
	months := int(math.Ceil(upfrontCosts / monthlySavings))
	return &months
}
