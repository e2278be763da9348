package recommend

import (
	"github.com/plansage/plansage/pkg/types"
)

// FilterByBudget removes candidate plans whose projected cost violates the
// user's hard budget constraints. Plans are excluded entirely, not demoted.
// When no constraints are set every plan passes through unchanged.
func FilterByBudget(plans []types.CandidatePlan, annualKWH float64, prefs types.Preferences) []types.CandidatePlan {
	budget := prefs.Budget
	if budget == nil || (budget.MaxAnnualCost == nil && budget.MaxMonthlyCost == nil) {
		return plans
	}

	eligible := make([]types.CandidatePlan, 0, len(plans))
	for _, plan := range plans {
		annualCost := ProjectAnnualCost(plan, annualKWH)
		if budget.MaxAnnualCost != nil && annualCost > *budget.MaxAnnualCost {
			continue
		}
		if budget.MaxMonthlyCost != nil && annualCost/12 > *budget.MaxMonthlyCost {
			continue
		}
		eligible = append(eligible, plan)
	}
	return eligible
}
