package model

import "time"

// ScoreStats summarizes the numeric score distribution of a batch.
type ScoreStats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Insights are the coarse descriptive tallies included in batch reports.
type Insights struct {
	HighRevenue     int // total amount above the batch median
	RecentlyActive  int // last transaction within 30 days
	DiverseCustomer int // at least 5 distinct counterparties
}

// Report is the batch-level summary produced after scoring a corpus of
// businesses. Counts are absolute; renderers derive percentages from
// TotalBusinesses and must skip them when it is zero.
type Report struct {
	GeneratedAt     time.Time
	GateCounts      map[GateDecision]int
	CategoryCounts  map[Category]int
	Scores          ScoreStats
	Insights        Insights
	TotalBusinesses int
	ModelTrained    bool
}
