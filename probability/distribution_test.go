package probability

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceDistributionLengthAndPositivity(t *testing.T) {
	s := newTestSimulator(t, 100, 0.05, 0.8, 3, 50, 21, 4)

	prices, err := s.PriceDistribution(context.Background(), 10001)
	require.NoError(t, err)
	require.Len(t, prices, 10001)
	for _, p := range prices {
		assert.Greater(t, p, 0.0)
	}
}

func TestPriceDistributionSingleStep(t *testing.T) {
	s := newTestSimulator(t, 100, 0.05, 0.2, 1, 1, 21, 4)

	prices, err := s.PriceDistribution(context.Background(), 10)
	require.NoError(t, err)
	for _, p := range prices {
		assert.Equal(t, 100.0, p)
	}
}

func TestSummarize(t *testing.T) {
	prices := []float64{5, 1, 4, 2, 3}
	sum := Summarize(prices)

	assert.Equal(t, 5, sum.Count)
	assert.InDelta(t, 3, sum.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), sum.StdDev, 1e-12)
	assert.Equal(t, 1.0, sum.Min)
	assert.Equal(t, 5.0, sum.Max)
	assert.Equal(t, 3.0, sum.Median)
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, prices)

	assert.Equal(t, DistributionSummary{}, Summarize(nil))
	assert.Equal(t, 0.0, Summarize([]float64{7}).StdDev)
}

func TestDistributionMeanMatchesForward(t *testing.T) {
	s := newTestSimulator(t, 100, 0.05, 0.2, 1, 2, 99, 0)

	prices, err := s.PriceDistribution(context.Background(), 200000)
	require.NoError(t, err)

	// Two points cover half the maturity.
	forward := 100 * math.Exp(0.05*0.5)
	assert.InDelta(t, forward, Summarize(prices).Mean, 0.2)
}
