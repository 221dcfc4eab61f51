package probability

import (
	"context"
	"log/slog"

	"github.com/bcdannyboy/gbmpricer/models"
)

// maxStreamBatch caps the batch size of a streamed run.
const maxStreamBatch = 1000

// StreamUpdate reports the running price after a completed batch.
type StreamUpdate struct {
	Trials int     `json:"trials"`
	Price  float64 `json:"price"`
}

// StreamBatchSize is min(1000, total/1000), at least 1.
func StreamBatchSize(total int) int {
	size := total / 1000
	if size > maxStreamBatch {
		size = maxStreamBatch
	}
	if size < 1 {
		size = 1
	}
	return size
}

// RunStreamed prices the option in linear batches of StreamBatchSize(total),
// summing each batch's discounted payoff and calling fn with the running
// mean. It returns the final price after total paths.
func (s *Simulator) RunStreamed(ctx context.Context, total int, strike float64, payoff models.Payoff, fn func(StreamUpdate)) (float64, error) {
	if err := checkRun(total, strike, payoff); err != nil {
		return 0, err
	}

	batchSize := StreamBatchSize(total)
	df := s.Model.DiscountFactor()
	s.logger().Info("streamed run started", slog.Int("trials", total), slog.Int("batch_size", batchSize))

	var (
		runningSum float64
		completed  int
		stream     uint64
	)
	for completed < total {
		current := batchSize
		if rest := total - completed; rest < current {
			current = rest
		}

		p, err := s.payoffSum(ctx, current, strike, payoff, &stream)
		if err != nil {
			return 0, err
		}
		runningSum += df * p.sum
		completed += current

		if fn != nil {
			fn(StreamUpdate{Trials: completed, Price: runningSum / float64(completed)})
		}
	}

	return runningSum / float64(completed), nil
}
