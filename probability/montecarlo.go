package probability

import (
	"context"
	"fmt"
	"math"

	"github.com/bcdannyboy/gbmpricer/models"
)

// DiscountFactor returns exp(-rT).
func DiscountFactor(r, t float64) float64 {
	return math.Exp(-r * t)
}

// PriceFromBatch is the discounted mean payoff over the terminal prices of
// the batch. The discount is applied once to the aggregate.
func PriceFromBatch(batch models.Batch, strike float64, payoff models.Payoff, r, t float64) (float64, error) {
	sum, err := SumFromBatch(batch, strike, payoff, r, t)
	if err != nil {
		return 0, err
	}
	return sum / float64(len(batch)), nil
}

// SumFromBatch is the discounted payoff sum, for callers aggregating batches
// produced elsewhere.
func SumFromBatch(batch models.Batch, strike float64, payoff models.Payoff, r, t float64) (float64, error) {
	if len(batch) == 0 {
		return 0, fmt.Errorf("%w: empty batch", models.ErrInvalidParameter)
	}
	if payoff == nil {
		return 0, fmt.Errorf("%w: nil payoff", models.ErrInvalidParameter)
	}

	sum := 0.0
	for _, p := range batch {
		sum += payoff.Payoff(p.Terminal(), strike)
	}
	return DiscountFactor(r, t) * sum, nil
}

// RunSimulation prices the option from trials fresh paths.
func (s *Simulator) RunSimulation(ctx context.Context, trials int, strike float64, payoff models.Payoff) (float64, error) {
	if err := checkRun(trials, strike, payoff); err != nil {
		return 0, err
	}

	var stream uint64
	acc, err := s.payoffSum(ctx, trials, strike, payoff, &stream)
	if err != nil {
		return 0, err
	}
	return s.Model.DiscountFactor() * acc.sum / float64(trials), nil
}

// RunBatch returns the discounted payoff sum of batchSize fresh paths.
func (s *Simulator) RunBatch(ctx context.Context, batchSize int, strike float64, payoff models.Payoff) (float64, error) {
	if err := checkRun(batchSize, strike, payoff); err != nil {
		return 0, err
	}

	var stream uint64
	acc, err := s.payoffSum(ctx, batchSize, strike, payoff, &stream)
	if err != nil {
		return 0, err
	}
	return s.Model.DiscountFactor() * acc.sum, nil
}

func checkRun(trials int, strike float64, payoff models.Payoff) error {
	if err := models.ValidateTrials(trials); err != nil {
		return err
	}
	if err := models.ValidateStrike(strike); err != nil {
		return err
	}
	if payoff == nil {
		return fmt.Errorf("%w: nil payoff", models.ErrInvalidParameter)
	}
	return nil
}
