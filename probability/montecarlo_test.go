package probability

import (
	"context"
	"math"
	"testing"

	"github.com/bcdannyboy/gbmpricer/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFromBatchDiscountsMeanPayoff(t *testing.T) {
	batch := models.Batch{
		{100, 110, 130},
		{100, 90, 80},
		{100, 105, 115},
	}

	price, err := PriceFromBatch(batch, 100, models.Call, 0.05, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.1)*(30+0+15)/3, price, 1e-12)

	sum, err := SumFromBatch(batch, 100, models.Put, 0.05, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.1)*20, sum, 1e-12)
}

func TestPriceFromBatchErrors(t *testing.T) {
	_, err := PriceFromBatch(nil, 100, models.Call, 0.05, 1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = SumFromBatch(models.Batch{{100}}, 100, nil, 0.05, 1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestCustomPayoffNeedsNoSimulatorChange(t *testing.T) {
	s := newTestSimulator(t, 100, 0.05, 0.2, 1, 10, 8, 2)
	digital := models.PayoffFunc(func(terminal, strike float64) float64 {
		if terminal > strike {
			return 1
		}
		return 0
	})

	price, err := s.RunSimulation(context.Background(), 20000, 100, digital)
	require.NoError(t, err)
	assert.Greater(t, price, 0.0)
	assert.Less(t, price, math.Exp(-0.05))
}

func TestRunSimulationAndBatchAgree(t *testing.T) {
	s := newTestSimulator(t, 100, 0.03, 0.25, 0.5, 12, 77, 3)

	price, err := s.RunSimulation(context.Background(), 9000, 100, models.Call)
	require.NoError(t, err)
	sum, err := s.RunBatch(context.Background(), 9000, 100, models.Call)
	require.NoError(t, err)

	assert.InDelta(t, sum/9000, price, 1e-12)
}

func TestRunSimulationIsReproducible(t *testing.T) {
	a := newTestSimulator(t, 100, 0.03, 0.25, 0.5, 12, 77, 1)
	b := newTestSimulator(t, 100, 0.03, 0.25, 0.5, 12, 77, 6)

	x, err := a.RunSimulation(context.Background(), 10000, 95, models.Put)
	require.NoError(t, err)
	y, err := b.RunSimulation(context.Background(), 10000, 95, models.Put)
	require.NoError(t, err)
	assert.Equal(t, x, y)
}

func TestSimulatorMatchesSequentialPathGeneration(t *testing.T) {
	g, err := models.NewGBM(100, 0.02, 0.3, 1, 6)
	require.NoError(t, err)
	factory := models.SeededFactory(31)
	s, err := NewSimulator(g, factory, 4)
	require.NoError(t, err)

	// A single chunk draws from stream 0 in path order.
	batch := g.GeneratePaths(500, factory(0))
	want, err := PriceFromBatch(batch, 100, models.Call, g.RiskFreeRate, g.TimeToMaturity)
	require.NoError(t, err)

	got, err := s.RunSimulation(context.Background(), 500, 100, models.Call)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestRunSimulationRejectsZeroTrials(t *testing.T) {
	s := newTestSimulator(t, 100, 0.05, 0.2, 1, 10, 1, 1)

	_, err := s.RunSimulation(context.Background(), 0, 100, models.Call)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
	_, err = s.RunBatch(context.Background(), 0, 100, models.Call)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}

func TestNewSimulatorRejectsInvalidModel(t *testing.T) {
	_, err := NewSimulator(nil, nil, 1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = NewSimulator(&models.GBM{Spot: 100, Volatility: 0, TimeToMaturity: 1, Steps: 10}, nil, 1)
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}
