// Package engine maps a pricing request onto one of the core operations.
// Every call builds its own model and simulator; nothing is shared between
// requests.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bcdannyboy/gbmpricer/models"
	"github.com/bcdannyboy/gbmpricer/positions"
	"github.com/bcdannyboy/gbmpricer/probability"
)

type Mode string

const (
	ModePrice        Mode = "price"
	ModeBatch        Mode = "batch"
	ModeFull         Mode = "full"
	ModeDistribution Mode = "distribution"
	ModeBSOnly       Mode = "bs_only"
	ModeGreeks       Mode = "greeks"
	ModeStream       Mode = "stream"
	ModeImpliedVol   Mode = "implied_vol"
)

var modeAliases = map[string]Mode{
	"price":        ModePrice,
	"single":       ModePrice,
	"batch":        ModeBatch,
	"full":         ModeFull,
	"tracked":      ModeFull,
	"distribution": ModeDistribution,
	"bs_only":      ModeBSOnly,
	"analytic":     ModeBSOnly,
	"greeks":       ModeGreeks,
	"stream":       ModeStream,
	"implied_vol":  ModeImpliedVol,
}

func ParseMode(s string) (Mode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnsupportedMode, s)
}

// simulates reports whether the mode draws Monte Carlo paths and so needs a
// trial count.
func (m Mode) simulates() bool {
	switch m {
	case ModePrice, ModeBatch, ModeFull, ModeDistribution, ModeStream:
		return true
	}
	return false
}

// Request carries the model parameters and invocation arguments of one run.
type Request struct {
	Mode           Mode
	OptionType     models.OptionType
	Spot           float64
	RiskFreeRate   float64
	Volatility     float64
	TimeToMaturity float64
	Steps          int
	Strike         float64
	Trials         int
	MarketPrice    float64 // implied_vol only
}

// Options are the environment of a run rather than its inputs.
type Options struct {
	Seed     uint64 // 0 seeds from the clock
	Workers  int    // <= 0 uses GOMAXPROCS
	Logger   *slog.Logger
	Progress probability.Progress
	OnUpdate func(probability.StreamUpdate)
}

// Result holds whichever outputs the mode produces; unset fields are omitted
// from JSON.
type Result struct {
	Mode              Mode                             `json:"mode"`
	OptionType        models.OptionType                `json:"option_type"`
	Price             *float64                         `json:"price,omitempty"`
	BlackScholesPrice *float64                         `json:"black_scholes_price,omitempty"`
	BatchSum          *float64                         `json:"batch_sum,omitempty"`
	MCPrices          []float64                        `json:"mc_prices,omitempty"`
	TrialCounts       []int                            `json:"trial_counts,omitempty"`
	StdError          *float64                         `json:"std_error,omitempty"`
	FinalPrices       []float64                        `json:"final_prices,omitempty"`
	Summary           *probability.DistributionSummary `json:"summary,omitempty"`
	ValueAtRisk       *float64                         `json:"value_at_risk_95,omitempty"`
	ImpliedVolatility *float64                         `json:"implied_volatility,omitempty"`
	*positions.Greeks
}

// Run validates the request and executes its mode. No partial result is
// returned on error.
func Run(ctx context.Context, req Request, opts Options) (*Result, error) {
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	req.Mode = mode

	optionType, err := models.ParseOptionType(string(req.OptionType))
	if err != nil {
		return nil, err
	}
	req.OptionType = optionType
	payoff := optionType.Payoff()

	model, err := models.NewGBM(req.Spot, req.RiskFreeRate, req.Volatility, req.TimeToMaturity, req.Steps)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateStrike(req.Strike); err != nil {
		return nil, err
	}
	if req.Mode.simulates() {
		if err := models.ValidateTrials(req.Trials); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("mode", string(req.Mode)), slog.String("option_type", string(req.OptionType)))

	res := &Result{Mode: req.Mode, OptionType: req.OptionType}

	switch req.Mode {
	case ModeBSOnly:
		p, err := positions.Price(model, req.Strike, req.OptionType)
		if err != nil {
			return nil, err
		}
		res.BlackScholesPrice = &p
		return res, nil

	case ModeGreeks:
		g, err := positions.CalculateGreeks(model, req.Strike, req.OptionType)
		if err != nil {
			return nil, err
		}
		res.Greeks = &g
		return res, nil

	case ModeImpliedVol:
		iv, err := positions.ImpliedVolatility(model, req.Strike, req.MarketPrice, req.OptionType)
		if err != nil {
			return nil, err
		}
		res.ImpliedVolatility = &iv
		return res, nil
	}

	sim, err := probability.NewSimulator(model, models.SeededFactory(opts.Seed), opts.Workers)
	if err != nil {
		return nil, err
	}
	sim.Logger = log

	switch req.Mode {
	case ModePrice:
		p, err := sim.RunSimulation(ctx, req.Trials, req.Strike, payoff)
		if err != nil {
			return nil, err
		}
		res.Price = &p

	case ModeBatch:
		sum, err := sim.RunBatch(ctx, req.Trials, req.Strike, payoff)
		if err != nil {
			return nil, err
		}
		res.BatchSum = &sum

	case ModeFull:
		tracked, err := sim.RunTracked(ctx, req.Trials, req.Strike, payoff, opts.Progress)
		if err != nil {
			return nil, err
		}
		bs, err := positions.Price(model, req.Strike, req.OptionType)
		if err != nil {
			return nil, err
		}
		res.Price = &tracked.FinalPrice
		res.MCPrices = tracked.Prices
		res.TrialCounts = tracked.TrialCounts
		res.StdError = &tracked.StdError
		res.BlackScholesPrice = &bs

	case ModeDistribution:
		prices, err := sim.PriceDistribution(ctx, req.Trials)
		if err != nil {
			return nil, err
		}
		summary := probability.Summarize(prices)
		v, err := probability.ValueAtRisk(req.Spot, prices, probability.DefaultConfidence)
		if err != nil {
			return nil, err
		}
		res.FinalPrices = prices
		res.Summary = &summary
		res.ValueAtRisk = &v

	case ModeStream:
		p, err := sim.RunStreamed(ctx, req.Trials, req.Strike, payoff, func(u probability.StreamUpdate) {
			if opts.OnUpdate != nil {
				opts.OnUpdate(u)
			}
			if opts.Progress != nil {
				opts.Progress(u.Trials, req.Trials)
			}
		})
		if err != nil {
			return nil, err
		}
		res.Price = &p
	}

	return res, nil
}
