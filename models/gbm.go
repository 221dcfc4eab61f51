package models

import (
	"fmt"
	"math"
)

// GBM holds the parameters of a geometric Brownian motion under the
// risk-neutral measure. Values are fixed once NewGBM has validated them.
type GBM struct {
	Spot           float64 // Initial asset price S0
	RiskFreeRate   float64 // Continuously compounded rate r
	Volatility     float64 // Annualised volatility sigma
	TimeToMaturity float64 // Years until expiry T
	Steps          int     // Discretisation steps N
}

// Path is one simulated price trajectory; Path[0] is the spot price.
type Path []float64

// Terminal returns the price at maturity.
func (p Path) Terminal() float64 {
	return p[len(p)-1]
}

// Batch is a set of independently generated paths.
type Batch []Path

// Terminals extracts the last price of every path in the batch.
func (b Batch) Terminals() []float64 {
	out := make([]float64, len(b))
	for i, p := range b {
		out[i] = p.Terminal()
	}
	return out
}

func NewGBM(spot, r, sigma, t float64, steps int) (*GBM, error) {
	g := &GBM{
		Spot:           spot,
		RiskFreeRate:   r,
		Volatility:     sigma,
		TimeToMaturity: t,
		Steps:          steps,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate rejects parameters that would push NaN or Inf through the
// diffusion term or the d1 denominator.
func (g *GBM) Validate() error {
	switch {
	case !finite(g.Spot) || g.Spot <= 0:
		return fmt.Errorf("%w: spot must be a finite positive number, got %v", ErrInvalidParameter, g.Spot)
	case !finite(g.RiskFreeRate):
		return fmt.Errorf("%w: risk-free rate must be finite, got %v", ErrInvalidParameter, g.RiskFreeRate)
	case !finite(g.Volatility) || g.Volatility <= 0:
		return fmt.Errorf("%w: volatility must be a finite positive number, got %v", ErrInvalidParameter, g.Volatility)
	case !finite(g.TimeToMaturity) || g.TimeToMaturity <= 0:
		return fmt.Errorf("%w: time to maturity must be a finite positive number, got %v", ErrInvalidParameter, g.TimeToMaturity)
	case g.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidParameter, g.Steps)
	}

	if s := g.Volatility * math.Sqrt(g.TimeToMaturity); s == 0 || math.IsInf(s, 0) {
		return fmt.Errorf("%w: volatility*sqrt(T) is degenerate (%v)", ErrInvalidParameter, s)
	}
	return nil
}

// ValidateStrike accepts any finite non-negative strike.
func ValidateStrike(k float64) error {
	if !finite(k) || k < 0 {
		return fmt.Errorf("%w: strike must be a finite non-negative number, got %v", ErrInvalidParameter, k)
	}
	return nil
}

// ValidateTrials rejects empty simulations.
func ValidateTrials(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: trial count must be at least 1, got %d", ErrInvalidParameter, n)
	}
	return nil
}

func (g *GBM) dt() float64 {
	return g.TimeToMaturity / float64(g.Steps)
}

// DiscountFactor returns exp(-rT).
func (g *GBM) DiscountFactor() float64 {
	return math.Exp(-g.RiskFreeRate * g.TimeToMaturity)
}

// GeneratePath simulates one path of length Steps using the exact
// log-normal solution of the SDE:
//
//	S(t+dt) = S(t) * exp((r - 0.5*sigma^2)*dt + sigma*sqrt(dt)*Z)
func (g *GBM) GeneratePath(src NormalSource) Path {
	dt := g.dt()
	path := make(Path, g.Steps)
	path[0] = g.Spot

	for i := 1; i < g.Steps; i++ {
		path[i] = g.step(path[i-1], dt, src.NormFloat64())
	}

	return path
}

// TerminalPrice runs the same recurrence as GeneratePath but keeps only the
// running price. For identical draws the result equals
// GeneratePath(src).Terminal() exactly.
func (g *GBM) TerminalPrice(src NormalSource) float64 {
	dt := g.dt()
	price := g.Spot

	for i := 1; i < g.Steps; i++ {
		price = g.step(price, dt, src.NormFloat64())
	}

	return price
}

func (g *GBM) step(prev, dt, z float64) float64 {
	driftTerm := (g.RiskFreeRate - 0.5*g.Volatility*g.Volatility) * dt
	diffusionTerm := g.Volatility * math.Sqrt(dt) * z
	return prev * math.Exp(driftTerm+diffusionTerm)
}

// GeneratePaths simulates numPaths independent paths from one source.
func (g *GBM) GeneratePaths(numPaths int, src NormalSource) Batch {
	paths := make(Batch, numPaths)
	for i := 0; i < numPaths; i++ {
		paths[i] = g.GeneratePath(src)
	}
	return paths
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
