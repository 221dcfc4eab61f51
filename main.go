package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bcdannyboy/gbmpricer/config"
	"github.com/bcdannyboy/gbmpricer/engine"
	"github.com/bcdannyboy/gbmpricer/logging"
	"github.com/bcdannyboy/gbmpricer/models"
	"github.com/bcdannyboy/gbmpricer/probability"
	mpb "github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"github.com/xhhuango/json"
)

const usage = `usage: gbmpricer <mode> [call|put] <spot> <rate> <volatility> <maturity> <steps> <strike> <trials|market_price>

modes: price, batch, full (tracked), distribution, bs_only, greeks, stream, implied_vol`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log := logging.New(cfg.LogLevel, stderr)

	req, err := parseArgs(args)
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, usage)
			return 2
		}
		writeError(stdout, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	opts := engine.Options{
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
		Logger:  log,
	}

	if req.Mode == engine.ModeStream {
		// Mirror the original front end: reference price first, then a line
		// per batch.
		bs := req
		bs.Mode = engine.ModeBSOnly
		ref, err := engine.Run(ctx, bs, opts)
		if err != nil {
			writeError(stdout, err)
			return 1
		}
		enc.Encode(map[string]interface{}{"type": "bs_price", "value": *ref.BlackScholesPrice})
		opts.OnUpdate = func(u probability.StreamUpdate) {
			enc.Encode(map[string]interface{}{"type": "mc_update", "trials": u.Trials, "price": u.Price})
		}
	}

	if cfg.Progress && (req.Mode == engine.ModeFull || req.Mode == engine.ModeStream) {
		progress := mpb.New(mpb.WithWidth(64), mpb.WithOutput(stderr))
		bar := progress.AddBar(int64(req.Trials),
			mpb.PrependDecorators(
				decor.Name("Paths"),
				decor.Percentage(decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d / %d)", decor.WCSyncSpace),
			),
		)
		opts.Progress = func(done, total int) {
			bar.SetCurrent(int64(done))
		}
		defer func() {
			if !bar.Completed() {
				bar.Abort(false)
			}
			progress.Wait()
		}()
	}

	res, err := engine.Run(ctx, req, opts)
	if err != nil {
		log.Error("run failed", "error", err)
		writeError(stdout, err)
		return 1
	}

	if req.Mode == engine.ModeStream {
		enc.Encode(map[string]interface{}{"type": "complete", "trials": req.Trials, "final_price": *res.Price})
		return 0
	}
	if err := enc.Encode(res); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// parseArgs follows the positional layout of the original binary. The
// option type may be omitted, in which case a call is priced.
func parseArgs(args []string) (engine.Request, error) {
	if len(args) < 8 {
		return engine.Request{}, errUsage
	}

	mode, err := engine.ParseMode(args[0])
	if err != nil {
		return engine.Request{}, err
	}
	rest := args[1:]

	optionType := models.OptionCall
	if len(rest) == 8 {
		if optionType, err = models.ParseOptionType(rest[0]); err != nil {
			return engine.Request{}, err
		}
		rest = rest[1:]
	}
	if len(rest) != 7 {
		return engine.Request{}, errUsage
	}

	floats := make([]float64, 4)
	names := []string{"spot", "rate", "volatility", "maturity"}
	for i := range floats {
		if floats[i], err = strconv.ParseFloat(rest[i], 64); err != nil {
			return engine.Request{}, fmt.Errorf("%w: %s: %v", models.ErrInvalidParameter, names[i], err)
		}
	}
	steps, err := strconv.Atoi(rest[4])
	if err != nil {
		return engine.Request{}, fmt.Errorf("%w: steps: %v", models.ErrInvalidParameter, err)
	}
	strike, err := strconv.ParseFloat(rest[5], 64)
	if err != nil {
		return engine.Request{}, fmt.Errorf("%w: strike: %v", models.ErrInvalidParameter, err)
	}

	req := engine.Request{
		Mode:           mode,
		OptionType:     optionType,
		Spot:           floats[0],
		RiskFreeRate:   floats[1],
		Volatility:     floats[2],
		TimeToMaturity: floats[3],
		Steps:          steps,
		Strike:         strike,
	}

	if mode == engine.ModeImpliedVol {
		if req.MarketPrice, err = strconv.ParseFloat(rest[6], 64); err != nil {
			return engine.Request{}, fmt.Errorf("%w: market price: %v", models.ErrInvalidParameter, err)
		}
	} else if req.Trials, err = strconv.Atoi(rest[6]); err != nil {
		return engine.Request{}, fmt.Errorf("%w: trials: %v", models.ErrInvalidParameter, err)
	}

	return req, nil
}

func writeError(w io.Writer, err error) {
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
