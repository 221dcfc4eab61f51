package probability

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/bcdannyboy/gbmpricer/models"
)

// NumCheckpoints is the number of log-spaced intervals between total/10 and
// total.
const NumCheckpoints = 20

// Progress is called after each recorded checkpoint or batch.
type Progress func(done, total int)

// TrackedResult is the outcome of a convergence run. Prices[i] is the
// running discounted mean after TrialCounts[i] paths.
type TrackedResult struct {
	FinalPrice  float64   `json:"price"`
	Prices      []float64 `json:"mc_prices"`
	TrialCounts []int     `json:"trial_counts"`
	StdError    float64   `json:"std_error"`
}

// Checkpoints returns the log-spaced trial counts at which a tracked run
// records its running price. Candidates floor(total*10^(i/20)/10) for
// i = 0..20 are kept when in (0, total]; total is appended if missing.
// Small totals produce repeated values, which RunTracked skips.
func Checkpoints(total int) []int {
	var checkpoints []int
	for i := 0; i <= NumCheckpoints; i++ {
		c := int(float64(total) * (math.Pow(10, float64(i)/NumCheckpoints) / 10))
		if c > 0 && c <= total {
			checkpoints = append(checkpoints, c)
		}
	}
	if !slices.Contains(checkpoints, total) {
		checkpoints = append(checkpoints, total)
	}
	return checkpoints
}

// accumulator is the running state of one tracked run.
type accumulator struct {
	generated int
	partial
}

// RunTracked simulates trials paths in checkpoint segments, generating every
// path exactly once, and records the running price at each checkpoint.
func (s *Simulator) RunTracked(ctx context.Context, trials int, strike float64, payoff models.Payoff, progress Progress) (*TrackedResult, error) {
	if err := checkRun(trials, strike, payoff); err != nil {
		return nil, err
	}

	log := s.logger()
	started := time.Now()
	checkpoints := Checkpoints(trials)
	log.Info("tracked run started", slog.Int("trials", trials), slog.Int("checkpoints", len(checkpoints)), slog.Int("workers", s.Workers))

	df := s.Model.DiscountFactor()
	res := &TrackedResult{
		Prices:      make([]float64, 0, len(checkpoints)),
		TrialCounts: make([]int, 0, len(checkpoints)),
	}

	var (
		acc    accumulator
		stream uint64
	)
	for _, checkpoint := range checkpoints {
		toGenerate := checkpoint - acc.generated
		if toGenerate <= 0 {
			continue
		}

		p, err := s.payoffSum(ctx, toGenerate, strike, payoff, &stream)
		if err != nil {
			return nil, err
		}
		acc.add(p)
		acc.generated = checkpoint

		price := df * acc.sum / float64(acc.generated)
		res.Prices = append(res.Prices, price)
		res.TrialCounts = append(res.TrialCounts, acc.generated)
		log.Debug("checkpoint", slog.Int("paths", acc.generated), slog.Float64("price", price))

		if progress != nil {
			progress(acc.generated, trials)
		}
	}

	res.FinalPrice = df * acc.sum / float64(trials)
	res.StdError = df * standardError(acc.partial, trials)

	log.Info("tracked run finished", slog.Float64("price", res.FinalPrice), slog.Float64("std_error", res.StdError), slog.Duration("elapsed", time.Since(started)))
	return res, nil
}

// standardError of the mean payoff from its running moments.
func standardError(p partial, n int) float64 {
	if n < 2 {
		return 0
	}
	fn := float64(n)
	variance := (p.sumSq - p.sum*p.sum/fn) / (fn - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance / fn)
}
