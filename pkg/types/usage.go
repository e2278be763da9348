package types

// UsageDataPoint is one month of metered consumption. Cost is optional and
// treated as 0 when the bill amount wasn't captured.
type UsageDataPoint struct {
	// Month is the billing month in "YYYY-MM" form.
	Month string  `json:"month"`
	KWH   float64 `json:"kwh"`
	Cost  float64 `json:"cost,omitempty"`
}

// AggregatedStats summarizes a usage history. Fields may be zero when the
// upstream source only provided raw data points.
type AggregatedStats struct {
	TotalKWH           float64 `json:"totalKWH"`
	TotalCost          float64 `json:"totalCost"`
	AverageMonthlyKWH  float64 `json:"averageMonthlyKWH"`
	AverageMonthlyCost float64 `json:"averageMonthlyCost"`
	PeakMonth          string  `json:"peakMonth,omitempty"`
	PeakMonthKWH       float64 `json:"peakMonthKWH,omitempty"`
}

// UsageProfile is a household's consumption history for one evaluation run.
// It is immutable for the duration of a scoring pass.
type UsageProfile struct {
	DataPoints []UsageDataPoint `json:"dataPoints"`
	Stats      AggregatedStats  `json:"aggregatedStats"`
}

// ComputeAggregatedStats derives summary statistics from raw data points.
// Used when a profile arrives without aggregates.
func ComputeAggregatedStats(points []UsageDataPoint) AggregatedStats {
	var stats AggregatedStats
	if len(points) == 0 {
		return stats
	}
	for _, p := range points {
		stats.TotalKWH += p.KWH
		stats.TotalCost += p.Cost
		if p.KWH > stats.PeakMonthKWH {
			stats.PeakMonthKWH = p.KWH
			stats.PeakMonth = p.Month
		}
	}
	stats.AverageMonthlyKWH = stats.TotalKWH / float64(len(points))
	stats.AverageMonthlyCost = stats.TotalCost / float64(len(points))
	return stats
}
