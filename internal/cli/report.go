package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quillon/creditpulse/internal/model"
)

// gateOrder fixes the display order of gate decisions in reports.
var gateOrder = []model.GateDecision{
	model.GatePass,
	model.GateLowTrust,
	model.GateCircularFake,
	model.GateNonCompliant,
	model.GateSlowSettlement,
}

// categoryOrder fixes the display order of risk categories in reports.
var categoryOrder = []model.Category{
	model.CategoryExcellent,
	model.CategoryGood,
	model.CategoryAtRisk,
	model.CategoryPoor,
	model.CategoryRejected,
}

// FormatReport renders a batch report as plain text. Percentage lines are
// skipped entirely for an empty batch.
func FormatReport(r model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis date: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Businesses analyzed: %d\n", r.TotalBusinesses)
	if r.ModelTrained {
		b.WriteString("Categories: classifier (formula-imitation)\n")
	} else {
		b.WriteString("Categories: formula only\n")
	}

	if r.TotalBusinesses == 0 {
		b.WriteString("\nNo businesses scored.\n")
		return b.String()
	}

	total := float64(r.TotalBusinesses)

	b.WriteString("\nHard filter results:\n")
	for _, g := range gateOrder {
		if n := r.GateCounts[g]; n > 0 {
			fmt.Fprintf(&b, "  %-16s %4d (%.1f%%)\n", g, n, float64(n)/total*100)
		}
	}

	b.WriteString("\nCredit category distribution:\n")
	for _, c := range categoryOrder {
		if n := r.CategoryCounts[c]; n > 0 {
			fmt.Fprintf(&b, "  %-16s %4d (%.1f%%)\n", c, n, float64(n)/total*100)
		}
	}

	b.WriteString("\nCredit score statistics:\n")
	fmt.Fprintf(&b, "  Average: %.1f\n", r.Scores.Mean)
	fmt.Fprintf(&b, "  Median:  %.1f\n", r.Scores.Median)
	fmt.Fprintf(&b, "  Min:     %.1f\n", r.Scores.Min)
	fmt.Fprintf(&b, "  Max:     %.1f\n", r.Scores.Max)

	b.WriteString("\nBusiness insights:\n")
	fmt.Fprintf(&b, "  High-revenue businesses:   %d (%.1f%%)\n",
		r.Insights.HighRevenue, float64(r.Insights.HighRevenue)/total*100)
	fmt.Fprintf(&b, "  Recently active:           %d (%.1f%%)\n",
		r.Insights.RecentlyActive, float64(r.Insights.RecentlyActive)/total*100)
	fmt.Fprintf(&b, "  Diverse customer base (5+): %d (%.1f%%)\n",
		r.Insights.DiverseCustomer, float64(r.Insights.DiverseCustomer)/total*100)

	return b.String()
}

// FormatResultsTable renders per-business results as an aligned table,
// ordered by descending score.
func FormatResultsTable(results []model.ScoreResult) string {
	sorted := make([]model.ScoreResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %8s  %-10s %-15s\n", "BUSINESS", "SCORE", "CATEGORY", "GATE")
	for _, r := range sorted {
		fmt.Fprintf(&b, "%-20s %8.1f  %-10s %-15s\n",
			r.BusinessID, r.Score, r.FinalCategory(), r.Gate)
	}
	return b.String()
}
