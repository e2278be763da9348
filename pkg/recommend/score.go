package recommend

import (
	"github.com/plansage/plansage/pkg/types"
)

// Weights splits the 100 available scoring points between the savings, risk,
// and preference-match components.
type Weights struct {
	Savings    float64
	Risk       float64
	Preference float64
}

// WeightsFor returns the weight distribution for a cost savings priority.
// The three weights always sum to 100.
func WeightsFor(priority types.CostPriority) Weights {
	switch priority {
	case types.CostPriorityHigh:
		return Weights{Savings: 60, Risk: 25, Preference: 15}
	case types.CostPriorityLow:
		return Weights{Savings: 40, Risk: 30, Preference: 30}
	default:
		return Weights{Savings: 50, Risk: 30, Preference: 20}
	}
}

// ScorePlan combines savings, risk, and preference-match components into a
// single comparable score. Higher is better; the score has no fixed range and
// is only meaningful relative to other plans in the same pass.
func ScorePlan(plan types.CandidatePlan, prefs types.Preferences, savings types.Savings, risk types.Risk, currentAnnualCost float64) float64 {
	w := WeightsFor(prefs.CostSavingsPriority)
	return savingsComponent(savings.AnnualSavings, currentAnnualCost, w.Savings) +
		riskComponent(risk.Score, w.Risk) +
		preferenceComponent(plan, prefs, w.Preference)
}

// savingsComponent scales savings against what a realistic best case looks
// like: half of the current annual spend, floored at $2000 so small bills
// don't make modest savings look heroic. Plans that cost more than the
// current plan take a bounded penalty independent of the savings weight.
func savingsComponent(annualSavings, currentAnnualCost, weight float64) float64 {
	maxPotential := max(currentAnnualCost*0.5, 2000)
	switch {
	case annualSavings > 0:
		return min(annualSavings/maxPotential*weight, weight)
	case annualSavings < 0:
		return max(annualSavings/maxPotential*10, -10)
	default:
		return 0
	}
}

func riskComponent(riskScore, weight float64) float64 {
	return -(riskScore / 100) * weight
}

// preferenceComponent awards a quarter of the preference weight for each
// stated preference the plan satisfies.
func preferenceComponent(plan types.CandidatePlan, prefs types.Preferences, weight float64) float64 {
	pointsPerMatch := weight / 4
	var points float64

	if prefs.ContractType != "" && plan.ContractType == prefs.ContractType {
		points += pointsPerMatch
	}
	if plan.RenewablePercentage != nil && *plan.RenewablePercentage >= float64(prefs.RenewablePercentage) {
		points += pointsPerMatch
	}
	if plan.SupplierRating != nil && *plan.SupplierRating >= prefs.SupplierRating {
		points += pointsPerMatch
	}
	if plan.EarlyTerminationFee == nil || *plan.EarlyTerminationFee == 0 ||
		*plan.EarlyTerminationFee <= prefs.TerminationFeeTolerance {
		points += pointsPerMatch
	}

	return points
}
