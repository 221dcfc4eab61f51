package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGBMRejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name                string
		spot, r, sigma, ttm float64
		steps               int
	}{
		{"zero volatility", 100, 0.05, 0, 1, 10},
		{"negative volatility", 100, 0.05, -0.2, 1, 10},
		{"zero maturity", 100, 0.05, 0.2, 0, 10},
		{"zero steps", 100, 0.05, 0.2, 1, 0},
		{"negative spot", -1, 0.05, 0.2, 1, 10},
		{"zero spot", 0, 0.05, 0.2, 1, 10},
		{"nan rate", 100, math.NaN(), 0.2, 1, 10},
		{"infinite volatility", 100, 0.05, math.Inf(1), 1, 10},
		{"infinite maturity", 100, 0.05, 0.2, math.Inf(1), 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGBM(tc.spot, tc.r, tc.sigma, tc.ttm, tc.steps)
			require.ErrorIs(t, err, ErrInvalidParameter)
			assert.Nil(t, g)
		})
	}
}

func TestNewGBMAcceptsNegativeRate(t *testing.T) {
	g, err := NewGBM(100, -0.01, 0.2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, -0.01, g.RiskFreeRate)
}

func TestValidateStrikeAndTrials(t *testing.T) {
	assert.NoError(t, ValidateStrike(0))
	assert.NoError(t, ValidateStrike(120))
	assert.ErrorIs(t, ValidateStrike(-1), ErrInvalidParameter)
	assert.ErrorIs(t, ValidateStrike(math.NaN()), ErrInvalidParameter)

	assert.NoError(t, ValidateTrials(1))
	assert.ErrorIs(t, ValidateTrials(0), ErrInvalidParameter)
}

func TestGeneratePathSingleStepKeepsSpot(t *testing.T) {
	g, err := NewGBM(100, 0, 0.2, 1, 1)
	require.NoError(t, err)

	path := g.GeneratePath(NewSeededSource(7))
	assert.Equal(t, Path{100}, path)
	assert.Equal(t, 100.0, g.TerminalPrice(NewSeededSource(7)))
}

func TestGeneratePathFollowsLogNormalStep(t *testing.T) {
	g, err := NewGBM(100, 0.05, 0.2, 1, 3)
	require.NoError(t, err)

	path := g.GeneratePath(NewSequenceSource(0.5, -1.0))
	require.Len(t, path, 3)

	dt := 1.0 / 3
	drift := (0.05 - 0.5*0.2*0.2) * dt
	want1 := 100 * math.Exp(drift+0.2*math.Sqrt(dt)*0.5)
	want2 := want1 * math.Exp(drift+0.2*math.Sqrt(dt)*-1.0)

	assert.Equal(t, 100.0, path[0])
	assert.InDelta(t, want1, path[1], 1e-12)
	assert.InDelta(t, want2, path[2], 1e-12)
}

func TestTerminalPriceMatchesGeneratedPath(t *testing.T) {
	g, err := NewGBM(100, 0.03, 0.35, 2, 50)
	require.NoError(t, err)

	a := NewSeededSource(42)
	b := NewSeededSource(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, g.GeneratePath(a).Terminal(), g.TerminalPrice(b))
	}
}

func TestGeneratePathsAreIndependent(t *testing.T) {
	g, err := NewGBM(100, 0, 0.2, 1, 20)
	require.NoError(t, err)

	batch := g.GeneratePaths(10, NewSeededSource(1))
	require.Len(t, batch, 10)

	terminals := batch.Terminals()
	seen := make(map[float64]bool)
	for i, p := range batch {
		assert.Len(t, p, 20)
		assert.Equal(t, 100.0, p[0])
		assert.Greater(t, terminals[i], 0.0)
		seen[terminals[i]] = true
	}
	assert.Len(t, seen, 10)
}

func TestDiscountFactor(t *testing.T) {
	g, err := NewGBM(100, 0.05, 0.2, 2, 10)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-0.1), g.DiscountFactor(), 1e-15)
}

func BenchmarkGeneratePath(b *testing.B) {
	g, _ := NewGBM(100, 0.05, 0.2, 1, 252)
	src := NewSeededSource(3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.GeneratePath(src)
	}
}

func BenchmarkTerminalPrice(b *testing.B) {
	g, _ := NewGBM(100, 0.05, 0.2, 1, 252)
	src := NewSeededSource(3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.TerminalPrice(src)
	}
}
