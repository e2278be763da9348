package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/plansage/plansage/pkg/explain"
	"github.com/plansage/plansage/pkg/log"
	"github.com/plansage/plansage/pkg/types"
)

// DefaultTopN is how many ranked plans get a detailed explanation by default.
const DefaultTopN = 3

// Engine runs the full scoring pipeline for one request. It holds no
// per-request state and is safe to share across concurrent requests.
type Engine struct {
	explainer explain.Explainer
}

// NewEngine creates an Engine. The explainer may be nil, in which case every
// explanation uses the deterministic template.
func NewEngine(explainer explain.Explainer) *Engine {
	return &Engine{explainer: explainer}
}

// Result is the output of one recommendation run. Recommendations holds the
// explained top-N; Scored holds the full ranked set for secondary listings.
type Result struct {
	Baseline        float64                `json:"baseline"`
	Recommendations []types.Recommendation `json:"recommendations"`
	Scored          []types.ScoredPlan     `json:"scoredPlans"`
}

// Recommend scores and ranks the candidate plans against the user's usage
// profile and preferences, returning the explained top-N. It returns
// ErrMissingUsageData when the profile cannot produce a positive baseline and
// ErrNoEligiblePlans when the budget filter removes every candidate; both are
// request-level conditions, not process failures.
func (e *Engine) Recommend(ctx context.Context, profile types.UsageProfile, prefs types.Preferences, plans []types.CandidatePlan, topN int) (Result, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if err := prefs.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid preferences: %w", err)
	}
	// Malformed plan numerics are data-integrity errors: fail loudly rather
	// than recommending from bad inputs.
	for _, plan := range plans {
		if err := plan.Validate(); err != nil {
			return Result{}, fmt.Errorf("invalid candidate plan: %w", err)
		}
	}

	currentAnnualCost, annualKWH, err := Baseline(profile)
	if err != nil {
		return Result{}, err
	}

	avgMonthlyCost := profile.Stats.AverageMonthlyCost
	if avgMonthlyCost <= 0 {
		avgMonthlyCost = currentAnnualCost / 12
	}

	eligible := FilterByBudget(plans, annualKWH, prefs)
	if len(eligible) == 0 {
		return Result{}, ErrNoEligiblePlans
	}

	scored := make([]types.ScoredPlan, 0, len(eligible))
	for _, plan := range eligible {
		annualCost := ProjectAnnualCost(plan, annualKWH)
		savings := CalculateSavings(currentAnnualCost, annualCost)
		risk := AssessRisk(plan, prefs, avgMonthlyCost)

		var upfront float64
		if plan.EarlyTerminationFee != nil {
			upfront = *plan.EarlyTerminationFee
		}
		payback := PaybackMonths(upfront, savings.MonthlySavings)

		scored = append(scored, types.ScoredPlan{
			Plan:                plan,
			Score:               ScorePlan(plan, prefs, savings, risk, currentAnnualCost),
			ProjectedAnnualCost: annualCost,
			Savings:             savings,
			Risk:                risk,
			PaybackMonths:       payback,
		})
	}

	ranked := Rank(scored)

	top := ranked
	if len(top) > topN {
		top = top[:topN]
	}

	recs := make([]types.Recommendation, 0, len(top))
	for _, sp := range top {
		recs = append(recs, types.Recommendation{
			PlanID:            sp.Plan.ID,
			SupplierName:      sp.Plan.SupplierName,
			PlanName:          sp.Plan.PlanName,
			Rank:              sp.Rank,
			AnnualSavings:     sp.Savings.AnnualSavings,
			MonthlySavings:    sp.Savings.MonthlySavings,
			PercentageSavings: sp.Savings.PercentageSavings,
			PaybackMonths:     sp.PaybackMonths,
			Explanation:       e.explainPlan(ctx, sp),
			RiskFlags:         sp.Risk.Flags,
			RiskScore:         sp.Risk.Score,
		})
	}

	return Result{Baseline: currentAnnualCost, Recommendations: recs, Scored: ranked}, nil
}

// explainPlan asks the external explainer for prose and substitutes the
// deterministic template whenever it is missing, fails, or returns nothing.
// The returned explanation is never empty.
func (e *Engine) explainPlan(ctx context.Context, sp types.ScoredPlan) string {
	req := explain.Request{
		SupplierName:         sp.Plan.SupplierName,
		PlanName:             sp.Plan.PlanName,
		ContractType:         sp.Plan.ContractType,
		RatePerKWH:           sp.Plan.RatePerKWH,
		AnnualSavings:        sp.Savings.AnnualSavings,
		MonthlySavings:       sp.Savings.MonthlySavings,
		PercentageSavings:    sp.Savings.PercentageSavings,
		RiskFlags:            sp.Risk.Flags,
		RiskScore:            sp.Risk.Score,
		ContractLengthMonths: sp.Plan.ContractLengthMonths,
		EarlyTerminationFee:  sp.Plan.EarlyTerminationFee,
		PaybackMonths:        sp.PaybackMonths,
	}

	if e.explainer != nil {
		text, err := e.explainer.Explain(ctx, req)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "explanation service failed, using fallback",
				slog.String("planID", sp.Plan.ID), slog.Any("error", err))
		}
	}
	return explain.Fallback(req)
}
