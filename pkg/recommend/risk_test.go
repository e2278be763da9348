package recommend

import (
	"testing"

	"github.com/plansage/plansage/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestAssessRisk(t *testing.T) {
	t.Run("No Flags For Clean Plan", func(t *testing.T) {
		plan := types.CandidatePlan{ContractType: types.ContractTypeFixed, RatePerKWH: 0.10}
		risk := AssessRisk(plan, types.Preferences{}, 200)
		assert.Empty(t, risk.Flags)
		assert.Equal(t, 0.0, risk.Score)
	})

	t.Run("Variable Rate", func(t *testing.T) {
		plan := types.CandidatePlan{ContractType: types.ContractTypeVariable, RatePerKWH: 0.10}
		risk := AssessRisk(plan, types.Preferences{}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagVariableRate)
		assert.Equal(t, 30.0, risk.Score)
	})

	t.Run("High Termination Fee By Ratio", func(t *testing.T) {
		// $300 fee against $2400 annual spend is 12.5%, above the 10% line.
		plan := types.CandidatePlan{
			ContractType:        types.ContractTypeFixed,
			RatePerKWH:          0.10,
			EarlyTerminationFee: fptr(300),
		}
		risk := AssessRisk(plan, types.Preferences{TerminationFeeTolerance: 500}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagHighTerminationFee)
		assert.NotContains(t, risk.Flags, types.RiskFlagFeeAboveTolerance)
		assert.Equal(t, 25.0, risk.Score)
	})

	t.Run("Fee Above Tolerance", func(t *testing.T) {
		// $200 fee is only 8.3% of annual spend but above the user's $150 line.
		plan := types.CandidatePlan{
			ContractType:        types.ContractTypeFixed,
			RatePerKWH:          0.10,
			EarlyTerminationFee: fptr(200),
		}
		risk := AssessRisk(plan, types.Preferences{TerminationFeeTolerance: 150}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagFeeAboveTolerance)
		assert.NotContains(t, risk.Flags, types.RiskFlagHighTerminationFee)
		assert.Equal(t, 15.0, risk.Score)
	})

	t.Run("Tolerated Fee", func(t *testing.T) {
		plan := types.CandidatePlan{
			ContractType:        types.ContractTypeFixed,
			RatePerKWH:          0.10,
			EarlyTerminationFee: fptr(100),
		}
		risk := AssessRisk(plan, types.Preferences{TerminationFeeTolerance: 150}, 200)
		assert.Empty(t, risk.Flags)
	})

	t.Run("Low Supplier Rating", func(t *testing.T) {
		plan := types.CandidatePlan{
			ContractType:   types.ContractTypeFixed,
			RatePerKWH:     0.10,
			SupplierRating: fptr(2.5),
		}
		risk := AssessRisk(plan, types.Preferences{SupplierRating: 4}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagLowSupplierRating)
		assert.Equal(t, 20.0, risk.Score)
	})

	t.Run("Contract Type Mismatch", func(t *testing.T) {
		plan := types.CandidatePlan{ContractType: types.ContractTypeVariable, RatePerKWH: 0.10}
		risk := AssessRisk(plan, types.Preferences{ContractType: types.ContractTypeFixed}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagContractTypeMismatch)
		// variable_rate also fires, the rules are additive
		assert.Equal(t, 40.0, risk.Score)
	})

	t.Run("Renewable Mismatch When Unset", func(t *testing.T) {
		plan := types.CandidatePlan{ContractType: types.ContractTypeFixed, RatePerKWH: 0.10}
		risk := AssessRisk(plan, types.Preferences{RenewablePercentage: 50}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagRenewableMismatch)
		assert.Equal(t, 5.0, risk.Score)
	})

	t.Run("Renewable Mismatch When Below", func(t *testing.T) {
		plan := types.CandidatePlan{
			ContractType:        types.ContractTypeFixed,
			RatePerKWH:          0.10,
			RenewablePercentage: fptr(25),
		}
		risk := AssessRisk(plan, types.Preferences{RenewablePercentage: 50}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagRenewableMismatch)
	})

	t.Run("Inflexible Contract", func(t *testing.T) {
		plan := types.CandidatePlan{
			ContractType:         types.ContractTypeFixed,
			RatePerKWH:           0.10,
			ContractLengthMonths: iptr(24),
			EarlyTerminationFee:  fptr(200),
		}
		risk := AssessRisk(plan, types.Preferences{FlexibilityMonths: 12, TerminationFeeTolerance: 500}, 200)
		assert.Contains(t, risk.Flags, types.RiskFlagInflexibleContract)
	})

	t.Run("Long Contract Without Fee Is Not Inflexible", func(t *testing.T) {
		plan := types.CandidatePlan{
			ContractType:         types.ContractTypeFixed,
			RatePerKWH:           0.10,
			ContractLengthMonths: iptr(24),
		}
		risk := AssessRisk(plan, types.Preferences{FlexibilityMonths: 12}, 200)
		assert.NotContains(t, risk.Flags, types.RiskFlagInflexibleContract)
	})

	t.Run("Score Clamped To 100", func(t *testing.T) {
		// Every rule fires: 30+25+20+10+5+15 = 105, clamped.
		plan := types.CandidatePlan{
			ContractType:         types.ContractTypeVariable,
			RatePerKWH:           0.10,
			ContractLengthMonths: iptr(36),
			EarlyTerminationFee:  fptr(500),
			SupplierRating:       fptr(1),
		}
		prefs := types.Preferences{
			ContractType:        types.ContractTypeFixed,
			SupplierRating:      4,
			RenewablePercentage: 100,
			FlexibilityMonths:   12,
		}
		risk := AssessRisk(plan, prefs, 200)
		assert.Len(t, risk.Flags, 6)
		assert.Equal(t, 100.0, risk.Score)
	})

	t.Run("Score Always Within Bounds", func(t *testing.T) {
		plans := []types.CandidatePlan{
			{ContractType: types.ContractTypeFixed, RatePerKWH: 0.10},
			{ContractType: types.ContractTypeVariable, RatePerKWH: 0.01, EarlyTerminationFee: fptr(10000), SupplierRating: fptr(0.5), ContractLengthMonths: iptr(60)},
			{ContractType: types.ContractTypeIndexed, RatePerKWH: 0.5, MonthlyFee: fptr(100)},
		}
		prefs := types.Preferences{
			ContractType:        types.ContractTypeFixed,
			SupplierRating:      5,
			RenewablePercentage: 100,
		}
		for _, plan := range plans {
			risk := AssessRisk(plan, prefs, 150)
			assert.GreaterOrEqual(t, risk.Score, 0.0)
			assert.LessOrEqual(t, risk.Score, 100.0)
		}
	})
}
