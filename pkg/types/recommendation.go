package types

import "time"

// RiskFlag is a qualitative label indicating a specific downside attribute of
// a plan.
type RiskFlag string

const (
	RiskFlagVariableRate         RiskFlag = "variable_rate"
	RiskFlagHighTerminationFee   RiskFlag = "high_termination_fee"
	RiskFlagFeeAboveTolerance    RiskFlag = "termination_fee_above_tolerance"
	RiskFlagLowSupplierRating    RiskFlag = "low_supplier_rating"
	RiskFlagContractTypeMismatch RiskFlag = "contract_type_mismatch"
	RiskFlagRenewableMismatch    RiskFlag = "renewable_energy_mismatch"
	RiskFlagInflexibleContract   RiskFlag = "inflexible_contract"
)

// Savings compares a plan's projected annual cost against the current baseline.
// Positive means the plan is cheaper than what the user pays today.
type Savings struct {
	AnnualSavings     float64 `json:"annualSavings"`
	MonthlySavings    float64 `json:"monthlySavings"`
	PercentageSavings float64 `json:"percentageSavings"`
}

// Risk is the bounded risk score and the flags that contributed to it.
type Risk struct {
	Flags []RiskFlag `json:"riskFlags"`
	Score float64    `json:"riskScore"` // 0-100
}

// ScoredPlan is a plan that survived the budget filter along with everything
// computed about it during one scoring pass.
type ScoredPlan struct {
	Plan                CandidatePlan `json:"plan"`
	Score               float64       `json:"score"`
	ProjectedAnnualCost float64       `json:"projectedAnnualCost"`
	Savings             Savings       `json:"savings"`
	Risk                Risk          `json:"risk"`
	PaybackMonths       *int          `json:"paybackPeriodMonths,omitempty"`
	Rank                int           `json:"rank"` // 1-based, dense, assigned by the ranker
}

// Recommendation is one ranked, explained plan in the response.
type Recommendation struct {
	PlanID            string     `json:"planId"`
	SupplierName      string     `json:"supplierName"`
	PlanName          string     `json:"planName"`
	Rank              int        `json:"rank"`
	AnnualSavings     float64    `json:"annualSavings"`
	MonthlySavings    float64    `json:"monthlySavings"`
	PercentageSavings float64    `json:"percentageSavings"`
	PaybackMonths     *int       `json:"paybackPeriodMonths,omitempty"`
	Explanation       string     `json:"explanation"`
	RiskFlags         []RiskFlag `json:"riskFlags"`
	RiskScore         float64    `json:"riskScore"`
}

// RecommendationRecord is one persisted recommendation run. Persistence is
// best-effort; a failed write never fails the run itself.
type RecommendationRecord struct {
	RunID           string           `json:"runID"`
	UserID          string           `json:"userID"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Baseline        float64          `json:"baseline"`
	Preferences     Preferences      `json:"preferences"`
	Recommendations []Recommendation `json:"recommendations"`
}
