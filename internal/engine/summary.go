package engine

import (
	"sort"
	"time"

	"github.com/quillon/creditpulse/internal/model"
)

// Summarize reduces a batch of results to the report totals. Pure
// reduction: it tolerates an empty batch by reporting zero businesses and
// leaving the score stats at their zero value.
func Summarize(results []model.ScoreResult) model.Report {
	report := model.Report{
		GeneratedAt:     time.Now(),
		TotalBusinesses: len(results),
		GateCounts:      make(map[model.GateDecision]int),
		CategoryCounts:  make(map[model.Category]int),
	}
	if len(results) == 0 {
		return report
	}

	scores := make([]float64, 0, len(results))
	amounts := make([]float64, 0, len(results))
	for _, r := range results {
		report.GateCounts[r.Gate]++
		report.CategoryCounts[r.FinalCategory()]++
		if r.ModelCategory != "" {
			report.ModelTrained = true
		}
		scores = append(scores, r.Score)
		amounts = append(amounts, r.Features.TotalAmount)
	}

	report.Scores = scoreStats(scores)

	amountMedian := median(amounts)
	for _, r := range results {
		if r.Features.TotalAmount > amountMedian {
			report.Insights.HighRevenue++
		}
		if r.Features.DaysSinceLast <= 30 {
			report.Insights.RecentlyActive++
		}
		if r.Features.CustomerCount >= 5 {
			report.Insights.DiverseCustomer++
		}
	}

	return report
}

func scoreStats(scores []float64) model.ScoreStats {
	stats := model.ScoreStats{Min: scores[0], Max: scores[0]}
	var sum float64
	for _, s := range scores {
		sum += s
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	stats.Mean = sum / float64(len(scores))
	stats.Median = median(scores)
	return stats
}

// median returns the middle value, averaging the two middle values for
// even-length input. Does not mutate its argument.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
