package recommend

import (
	"github.com/plansage/plansage/pkg/types"
)

// Points contributed by each risk rule. The rules are additive and the final
// score is clamped to 100; the two termination fee rules are mutually
// exclusive.
const (
	riskPointsVariableRate         = 30
	riskPointsHighTerminationFee   = 25
	riskPointsFeeAboveTolerance    = 15
	riskPointsLowSupplierRating    = 20
	riskPointsContractTypeMismatch = 10
	riskPointsRenewableMismatch    = 5
	riskPointsInflexibleContract   = 15
)

// highTerminationFeeRatio is the fraction of annual spend above which a
// termination fee is considered high regardless of the user's tolerance.
const highTerminationFeeRatio = 0.10

// AssessRisk derives a bounded risk score and qualitative risk flags for a
// plan given the user's preferences and their average monthly spend.
func AssessRisk(plan types.CandidatePlan, prefs types.Preferences, averageMonthlyCost float64) types.Risk {
	var risk types.Risk
	var points float64

	add := func(flag types.RiskFlag, p float64) {
		risk.Flags = append(risk.Flags, flag)
		points += p
	}

	if plan.ContractType == types.ContractTypeVariable {
		add(types.RiskFlagVariableRate, riskPointsVariableRate)
	}

	if plan.EarlyTerminationFee != nil {
		fee := *plan.EarlyTerminationFee
		annualSpend := averageMonthlyCost * 12
		if annualSpend > 0 && fee/annualSpend > highTerminationFeeRatio {
			add(types.RiskFlagHighTerminationFee, riskPointsHighTerminationFee)
		} else if fee > prefs.TerminationFeeTolerance {
			add(types.RiskFlagFeeAboveTolerance, riskPointsFeeAboveTolerance)
		}
	}

	if plan.SupplierRating != nil && *plan.SupplierRating < prefs.SupplierRating {
		add(types.RiskFlagLowSupplierRating, riskPointsLowSupplierRating)
	}

	if prefs.ContractType != "" && prefs.ContractType != plan.ContractType {
		add(types.RiskFlagContractTypeMismatch, riskPointsContractTypeMismatch)
	}

	if prefs.RenewablePercentage > 0 &&
		(plan.RenewablePercentage == nil || *plan.RenewablePercentage < float64(prefs.RenewablePercentage)) {
		add(types.RiskFlagRenewableMismatch, riskPointsRenewableMismatch)
	}

	if plan.ContractLengthMonths != nil && *plan.ContractLengthMonths > prefs.FlexibilityMonths &&
		plan.EarlyTerminationFee != nil && *plan.EarlyTerminationFee > 0 {
		add(types.RiskFlagInflexibleContract, riskPointsInflexibleContract)
	}

	risk.Score = min(points, 100)
	return risk
}
