package types

import "fmt"

// ContractType is the pricing structure of a supply plan.
type ContractType string

const (
	ContractTypeFixed    ContractType = "fixed"
	ContractTypeVariable ContractType = "variable"
	ContractTypeIndexed  ContractType = "indexed"
	ContractTypeHybrid   ContractType = "hybrid"
)

// Valid returns true if the contract type is one of the supported values.
func (c ContractType) Valid() bool {
	switch c {
	case ContractTypeFixed, ContractTypeVariable, ContractTypeIndexed, ContractTypeHybrid:
		return true
	}
	return false
}

// CandidatePlan represents one supplier's energy supply offer being evaluated
// for recommendation. Optional fields are pointers so we can distinguish
// "not provided" from zero.
type CandidatePlan struct {
	ID           string       `json:"id"`
	SupplierName string       `json:"supplierName"`
	PlanName     string       `json:"planName"`
	ContractType ContractType `json:"contractType"`

	// RatePerKWH is the supply rate in $/kWh. Must be positive.
	RatePerKWH float64 `json:"ratePerKWH"`

	ContractLengthMonths *int     `json:"contractLengthMonths,omitempty"`
	RenewablePercentage  *float64 `json:"renewablePercentage,omitempty"` // 0-100
	EarlyTerminationFee  *float64 `json:"earlyTerminationFee,omitempty"` // $
	MonthlyFee           *float64 `json:"monthlyFee,omitempty"`          // $
	SupplierRating       *float64 `json:"supplierRating,omitempty"`      // 0-5

	// Hidden plans are excluded from public listings but kept for history.
	Hidden bool `json:"hidden,omitempty"`
}

// Validate checks the plan's numeric fields before it enters the scoring
// pipeline. A plan that fails validation is a data-integrity problem, not a
// scoring result.
func (p CandidatePlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("plan missing id")
	}
	if !p.ContractType.Valid() {
		return fmt.Errorf("plan %s has invalid contract type: %q", p.ID, p.ContractType)
	}
	if p.RatePerKWH <= 0 {
		return fmt.Errorf("plan %s has non-positive rate: %f", p.ID, p.RatePerKWH)
	}
	if p.ContractLengthMonths != nil && *p.ContractLengthMonths < 0 {
		return fmt.Errorf("plan %s has negative contract length", p.ID)
	}
	if p.RenewablePercentage != nil && (*p.RenewablePercentage < 0 || *p.RenewablePercentage > 100) {
		return fmt.Errorf("plan %s has renewable percentage outside [0,100]: %f", p.ID, *p.RenewablePercentage)
	}
	if p.EarlyTerminationFee != nil && *p.EarlyTerminationFee < 0 {
		return fmt.Errorf("plan %s has negative early termination fee", p.ID)
	}
	if p.MonthlyFee != nil && *p.MonthlyFee < 0 {
		return fmt.Errorf("plan %s has negative monthly fee", p.ID)
	}
	if p.SupplierRating != nil && (*p.SupplierRating < 0 || *p.SupplierRating > 5) {
		return fmt.Errorf("plan %s has supplier rating outside [0,5]: %f", p.ID, *p.SupplierRating)
	}
	return nil
}
