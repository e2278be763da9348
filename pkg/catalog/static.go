package catalog

import (
	"github.com/plansage/plansage/pkg/types"
)

// DefaultPlans returns a representative set of supply plans used when no
// catalog has been seeded. Rates reflect typical deregulated-market offers;
// they are deliberately static so the recommendation flow works offline.
func DefaultPlans() []types.CandidatePlan {
	return []types.CandidatePlan{
		{
			ID:                   "gridwise-fixed-12",
			SupplierName:         "GridWise Energy",
			PlanName:             "Fixed Saver 12",
			ContractType:         types.ContractTypeFixed,
			RatePerKWH:           0.108,
			ContractLengthMonths: intPtr(12),
			RenewablePercentage:  floatPtr(20),
			EarlyTerminationFee:  floatPtr(100),
			SupplierRating:       floatPtr(4.2),
		},
		{
			ID:                   "gridwise-fixed-24",
			SupplierName:         "GridWise Energy",
			PlanName:             "Fixed Saver 24",
			ContractType:         types.ContractTypeFixed,
			RatePerKWH:           0.102,
			ContractLengthMonths: intPtr(24),
			RenewablePercentage:  floatPtr(20),
			EarlyTerminationFee:  floatPtr(200),
			SupplierRating:       floatPtr(4.2),
		},
		{
			ID:             "voltstream-market",
			SupplierName:   "VoltStream",
			PlanName:       "Market Rate",
			ContractType:   types.ContractTypeVariable,
			RatePerKWH:     0.094,
			SupplierRating: floatPtr(3.8),
		},
		{
			ID:                   "evergreen-100",
			SupplierName:         "Evergreen Power",
			PlanName:             "Pure Green 100",
			ContractType:         types.ContractTypeFixed,
			RatePerKWH:           0.124,
			ContractLengthMonths: intPtr(12),
			RenewablePercentage:  floatPtr(100),
			EarlyTerminationFee:  floatPtr(150),
			SupplierRating:       floatPtr(4.6),
		},
		{
			ID:                   "northlight-hybrid",
			SupplierName:         "Northlight",
			PlanName:             "Peak Shield",
			ContractType:         types.ContractTypeHybrid,
			RatePerKWH:           0.112,
			ContractLengthMonths: intPtr(18),
			RenewablePercentage:  floatPtr(50),
			MonthlyFee:           floatPtr(4.95),
			EarlyTerminationFee:  floatPtr(75),
			SupplierRating:       floatPtr(4.0),
		},
		{
			ID:                  "basin-indexed",
			SupplierName:        "Basin Utilities",
			PlanName:            "Wholesale Index",
			ContractType:        types.ContractTypeIndexed,
			RatePerKWH:          0.089,
			RenewablePercentage: floatPtr(10),
			SupplierRating:      floatPtr(3.4),
		},
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
