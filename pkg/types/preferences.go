package types

import "fmt"

// CurrentPreferencesVersion is the current version of the preferences struct.
// Increment this value when adding new fields that require default values.
const CurrentPreferencesVersion = 3

// CostPriority controls how heavily savings weigh against risk and
// preference fit when scoring plans.
type CostPriority string

const (
	CostPriorityHigh   CostPriority = "high"
	CostPriorityMedium CostPriority = "medium"
	CostPriorityLow    CostPriority = "low"
)

// Valid returns true if the priority is one of the supported values.
func (p CostPriority) Valid() bool {
	switch p {
	case CostPriorityHigh, CostPriorityMedium, CostPriorityLow:
		return true
	}
	return false
}

// BudgetConstraints are hard limits a plan must satisfy to be scored at all.
type BudgetConstraints struct {
	MaxMonthlyCost *float64 `json:"maxMonthlyCost,omitempty"`
	MaxAnnualCost  *float64 `json:"maxAnnualCost,omitempty"`
}

// Preferences captures a user's stated weighting and constraints for plan
// evaluation. These are stored per user and versioned like settings.
type Preferences struct {
	// CostSavingsPriority controls the scoring weight distribution.
	CostSavingsPriority CostPriority `json:"costSavingsPriority"`

	// FlexibilityMonths is the longest contract the user is comfortable with.
	FlexibilityMonths int `json:"flexibilityMonths"`

	// RenewablePercentage is the desired minimum renewable content (0-100).
	RenewablePercentage int `json:"renewablePercentage"`

	// SupplierRating is the minimum acceptable supplier rating (0-5).
	SupplierRating float64 `json:"supplierRating"`

	// ContractType is the preferred contract type. Empty means no preference.
	ContractType ContractType `json:"contractType,omitempty"`

	// TerminationFeeTolerance is the largest early termination fee ($) the
	// user considers acceptable.
	TerminationFeeTolerance float64 `json:"terminationFeeTolerance"`

	Budget *BudgetConstraints `json:"budgetConstraints,omitempty"`
}

// Validate checks the preferences before they enter the scoring pipeline.
func (p Preferences) Validate() error {
	if !p.CostSavingsPriority.Valid() {
		return fmt.Errorf("invalid cost savings priority: %q", p.CostSavingsPriority)
	}
	if p.FlexibilityMonths < 0 {
		return fmt.Errorf("flexibility months cannot be negative")
	}
	if p.RenewablePercentage < 0 || p.RenewablePercentage > 100 {
		return fmt.Errorf("renewable percentage must be between 0 and 100")
	}
	if p.SupplierRating < 0 || p.SupplierRating > 5 {
		return fmt.Errorf("supplier rating must be between 0 and 5")
	}
	if p.ContractType != "" && !p.ContractType.Valid() {
		return fmt.Errorf("invalid contract type preference: %q", p.ContractType)
	}
	if p.TerminationFeeTolerance < 0 {
		return fmt.Errorf("termination fee tolerance cannot be negative")
	}
	if p.Budget != nil {
		if p.Budget.MaxMonthlyCost != nil && *p.Budget.MaxMonthlyCost <= 0 {
			return fmt.Errorf("max monthly cost must be positive")
		}
		if p.Budget.MaxAnnualCost != nil && *p.Budget.MaxAnnualCost <= 0 {
			return fmt.Errorf("max annual cost must be positive")
		}
	}
	return nil
}

// MigratePreferences migrates stored preferences to the current version.
// It returns the migrated preferences, a boolean indicating if changes were
// made, and an error if migration failed.
func MigratePreferences(p Preferences, currentVersion int) (Preferences, bool, error) {
	if currentVersion >= CurrentPreferencesVersion {
		return p, false, nil
	}

	migrated := false
	// Loop through versions to apply migrations sequentially
	for version := currentVersion + 1; version <= CurrentPreferencesVersion; version++ {
		switch version {
		case 1:
			// version 1: initial
			if p.CostSavingsPriority == "" {
				p.CostSavingsPriority = CostPriorityMedium
				migrated = true
			}
		case 2:
			// version 2: add flexibility months
			if p.FlexibilityMonths == 0 {
				p.FlexibilityMonths = 12
				migrated = true
			}
		case 3:
			// version 3: add supplier rating minimum
			if p.SupplierRating == 0 {
				p.SupplierRating = 3.0
				migrated = true
			}
		default:
			return p, false, fmt.Errorf("unknown preferences version: %d", version)
		}
	}

	return p, migrated, nil
}
