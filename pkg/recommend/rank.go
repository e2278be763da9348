package recommend

import (
	"sort"

	"github.com/plansage/plansage/pkg/types"
)

// Rank sorts scored plans descending by score and assigns 1-based ranks with
// no gaps or duplicates. The sort is stable: plans with equal scores keep
// their original candidate order.
func Rank(scored []types.ScoredPlan) []types.ScoredPlan {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}
