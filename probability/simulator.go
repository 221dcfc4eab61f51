package probability

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/bcdannyboy/gbmpricer/models"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the number of paths one worker simulates from one source.
// Chunk boundaries, not worker count, decide which stream feeds which path,
// so results for a fixed seed do not depend on parallelism.
const ChunkSize = 4096

// Simulator runs Monte Carlo batches for one model on a bounded pool of
// workers, each chunk drawing from its own source.
type Simulator struct {
	Model   *models.GBM
	Sources models.SourceFactory
	Workers int
	Logger  *slog.Logger
}

func NewSimulator(model *models.GBM, sources models.SourceFactory, workers int) (*Simulator, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", models.ErrInvalidParameter)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if sources == nil {
		sources = models.SeededFactory(0)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Simulator{
		Model:   model,
		Sources: sources,
		Workers: workers,
		Logger:  slog.Default(),
	}, nil
}

func (s *Simulator) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// partial holds the undiscounted payoff moments of a set of paths.
type partial struct {
	sum   float64
	sumSq float64
}

func (p *partial) add(o partial) {
	p.sum += o.sum
	p.sumSq += o.sumSq
}

// forEachChunk splits n paths into ChunkSize pieces and runs fn for each on
// the worker pool. stream is advanced past the chunks consumed.
func (s *Simulator) forEachChunk(ctx context.Context, n int, stream *uint64, fn func(chunk, start, end int, src models.NormalSource)) error {
	chunks := (n + ChunkSize - 1) / ChunkSize
	base := *stream
	*stream += uint64(chunks)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for c := 0; c < chunks; c++ {
		c := c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := c * ChunkSize
			end := start + ChunkSize
			if end > n {
				end = n
			}
			fn(c, start, end, s.Sources(base+uint64(c)))
			return nil
		})
	}

	return g.Wait()
}

// payoffSum simulates n terminal prices and reduces their payoffs in chunk
// order.
func (s *Simulator) payoffSum(ctx context.Context, n int, strike float64, payoff models.Payoff, stream *uint64) (partial, error) {
	chunks := (n + ChunkSize - 1) / ChunkSize
	partials := make([]partial, chunks)

	err := s.forEachChunk(ctx, n, stream, func(chunk, start, end int, src models.NormalSource) {
		var p partial
		for i := start; i < end; i++ {
			v := payoff.Payoff(s.Model.TerminalPrice(src), strike)
			p.sum += v
			p.sumSq += v * v
		}
		partials[chunk] = p
	})
	if err != nil {
		return partial{}, err
	}

	var total partial
	for _, p := range partials {
		total.add(p)
	}
	return total, nil
}

// terminalPrices simulates n paths and keeps their terminal prices in path
// order.
func (s *Simulator) terminalPrices(ctx context.Context, n int, stream *uint64) ([]float64, error) {
	out := make([]float64, n)
	err := s.forEachChunk(ctx, n, stream, func(_, start, end int, src models.NormalSource) {
		for i := start; i < end; i++ {
			out[i] = s.Model.TerminalPrice(src)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
