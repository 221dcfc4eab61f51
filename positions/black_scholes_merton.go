package positions

import (
	"errors"
	"fmt"
	"math"

	"github.com/bcdannyboy/gbmpricer/models"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxIterations = 100
	epsilon       = 1e-8
)

var ErrNoConvergence = errors.New("implied volatility did not converge")

// PriceCall is the Black-Scholes price of a European call.
func PriceCall(g *models.GBM, strike float64) (float64, error) {
	d, err := newTerms(g, strike)
	if err != nil {
		return 0, err
	}
	return g.Spot*normCDF(d.d1) - strike*d.discount*normCDF(d.d2), nil
}

// PricePut is the Black-Scholes price of a European put.
func PricePut(g *models.GBM, strike float64) (float64, error) {
	d, err := newTerms(g, strike)
	if err != nil {
		return 0, err
	}
	return strike*d.discount*normCDF(-d.d2) - g.Spot*normCDF(-d.d1), nil
}

// Price dispatches on the option type.
func Price(g *models.GBM, strike float64, optionType models.OptionType) (float64, error) {
	switch optionType {
	case models.OptionCall:
		return PriceCall(g, strike)
	case models.OptionPut:
		return PricePut(g, strike)
	}
	return 0, fmt.Errorf("%w: %q", models.ErrUnsupportedOptionType, optionType)
}

// terms are the shared intermediates of the closed-form price and Greeks.
type terms struct {
	d1, d2   float64
	sqrtT    float64
	discount float64
}

func newTerms(g *models.GBM, strike float64) (terms, error) {
	if g == nil {
		return terms{}, fmt.Errorf("%w: nil model", models.ErrInvalidParameter)
	}
	if err := g.Validate(); err != nil {
		return terms{}, err
	}
	if err := models.ValidateStrike(strike); err != nil {
		return terms{}, err
	}

	sigma, t, r := g.Volatility, g.TimeToMaturity, g.RiskFreeRate
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(g.Spot) - math.Log(strike) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)

	return terms{
		d1:       d1,
		d2:       d1 - sigma*sqrtT,
		sqrtT:    sqrtT,
		discount: math.Exp(-r * t),
	}, nil
}

// ImpliedVolatility solves for the volatility that reproduces marketPrice,
// starting from g.Volatility and stepping by price error over vega.
func ImpliedVolatility(g *models.GBM, strike, marketPrice float64, optionType models.OptionType) (float64, error) {
	if g == nil {
		return 0, fmt.Errorf("%w: nil model", models.ErrInvalidParameter)
	}
	if optionType.Payoff() == nil {
		return 0, fmt.Errorf("%w: %q", models.ErrUnsupportedOptionType, optionType)
	}
	if math.IsNaN(marketPrice) || math.IsInf(marketPrice, 0) || marketPrice <= 0 {
		return 0, fmt.Errorf("%w: market price must be a finite positive number, got %v", models.ErrInvalidParameter, marketPrice)
	}

	trial := *g
	for i := 0; i < maxIterations; i++ {
		price, err := Price(&trial, strike, optionType)
		if err != nil {
			return 0, err
		}
		greeks, err := CalculateGreeks(&trial, strike, optionType)
		if err != nil {
			return 0, err
		}

		diff := price - marketPrice
		if math.Abs(diff) < epsilon {
			return trial.Volatility, nil
		}
		if greeks.Vega < epsilon {
			break
		}

		trial.Volatility -= diff / greeks.Vega
		if trial.Volatility <= 0 {
			trial.Volatility = 0.0001 // Avoid negative volatility
		}
	}
	return 0, fmt.Errorf("%w: last estimate %v", ErrNoConvergence, trial.Volatility)
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
