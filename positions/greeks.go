package positions

import (
	"fmt"

	"github.com/bcdannyboy/gbmpricer/models"
)

// Greeks are the first-order sensitivities of the Black-Scholes price plus
// gamma.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// Tuple returns (delta, gamma, theta, vega). Callers depend on this order.
func (g Greeks) Tuple() (float64, float64, float64, float64) {
	return g.Delta, g.Gamma, g.Theta, g.Vega
}

// CalculateGreeks computes delta, gamma, theta and vega in closed form from
// the same d1/d2 as the pricer. Gamma and vega do not depend on the option
// type.
func CalculateGreeks(g *models.GBM, strike float64, optionType models.OptionType) (Greeks, error) {
	if optionType.Payoff() == nil {
		return Greeks{}, fmt.Errorf("%w: %q", models.ErrUnsupportedOptionType, optionType)
	}
	d, err := newTerms(g, strike)
	if err != nil {
		return Greeks{}, err
	}

	pdf := normPDF(d.d1)
	decay := -g.Spot * pdf * g.Volatility / (2 * d.sqrtT)
	carry := g.RiskFreeRate * strike * d.discount

	greeks := Greeks{
		Gamma: pdf / (g.Spot * g.Volatility * d.sqrtT),
		Vega:  g.Spot * d.sqrtT * pdf,
	}
	if optionType == models.OptionCall {
		greeks.Delta = normCDF(d.d1)
		greeks.Theta = decay - carry*normCDF(d.d2)
	} else {
		greeks.Delta = normCDF(d.d1) - 1
		greeks.Theta = decay + carry*normCDF(-d.d2)
	}

	return greeks, nil
}
