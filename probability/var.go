package probability

import (
	"fmt"
	"sort"

	"github.com/bcdannyboy/gbmpricer/models"
)

// DefaultConfidence is the VaR level reported by distribution runs.
const DefaultConfidence = 0.95

// ValueAtRisk returns the loss of holding one unit of the underlying from
// spot to maturity that is not exceeded with the given confidence, taken
// over simulated terminal prices. A negative value means the position gains
// even at that quantile.
func ValueAtRisk(spot float64, terminals []float64, confidenceLevel float64) (float64, error) {
	if len(terminals) == 0 {
		return 0, fmt.Errorf("%w: no terminal prices", models.ErrInvalidParameter)
	}
	if !(confidenceLevel > 0 && confidenceLevel < 1) {
		return 0, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", models.ErrInvalidParameter, confidenceLevel)
	}

	losses := make([]float64, len(terminals))
	for i, finalPrice := range terminals {
		losses[i] = spot - finalPrice
	}
	sort.Float64s(losses)

	index := int(float64(len(losses)) * confidenceLevel)
	if index >= len(losses) {
		index = len(losses) - 1
	}
	return losses[index], nil
}
