// Package explain produces short plain-language justifications for ranked
// plan recommendations. The primary implementation calls the Gemini API; when
// it is unconfigured or fails, callers fall back to a deterministic template
// so a recommendation always carries an explanation.
package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/plansage/plansage/pkg/types"
)

// ErrNotConfigured is returned by an Explainer that has no backing service.
var ErrNotConfigured = errors.New("explanation service not configured")

// Request carries the numeric facts about one recommended plan. Only
// already-computed values cross this boundary; the explainer never re-derives
// scoring inputs.
type Request struct {
	SupplierName         string             `json:"supplierName"`
	PlanName             string             `json:"planName"`
	ContractType         types.ContractType `json:"contractType"`
	RatePerKWH           float64            `json:"ratePerKWH"`
	AnnualSavings        float64            `json:"annualSavings"`
	MonthlySavings       float64            `json:"monthlySavings"`
	PercentageSavings    float64            `json:"percentageSavings"`
	RiskFlags            []types.RiskFlag   `json:"riskFlags"`
	RiskScore            float64            `json:"riskScore"`
	ContractLengthMonths *int               `json:"contractLengthMonths,omitempty"`
	EarlyTerminationFee  *float64           `json:"earlyTerminationFee,omitempty"`
	PaybackMonths        *int               `json:"paybackPeriodMonths,omitempty"`
}

// Explainer generates a short natural-language explanation for a plan.
type Explainer interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// Fallback returns the deterministic templated explanation used whenever the
// external service is unavailable or returns unusable output.
func Fallback(req Request) string {
	return fmt.Sprintf("This %s plan from %s offers %.1f%% annual savings ($%.0f/year).",
		req.ContractType, req.SupplierName, req.PercentageSavings, req.AnnualSavings)
}
