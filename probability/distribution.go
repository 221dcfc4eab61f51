package probability

import (
	"context"
	"sort"

	"github.com/bcdannyboy/gbmpricer/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DistributionSummary describes a sample of terminal prices.
type DistributionSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P05    float64 `json:"p05"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// PriceDistribution simulates numPaths paths and returns their terminal
// prices in path order.
func (s *Simulator) PriceDistribution(ctx context.Context, numPaths int) ([]float64, error) {
	if err := models.ValidateTrials(numPaths); err != nil {
		return nil, err
	}
	var stream uint64
	return s.terminalPrices(ctx, numPaths, &stream)
}

// Summarize computes moments and empirical quantiles of prices. The input
// slice is not modified.
func Summarize(prices []float64) DistributionSummary {
	if len(prices) == 0 {
		return DistributionSummary{}
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}

	return DistributionSummary{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		P05:    stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}
