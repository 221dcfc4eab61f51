package models

import (
	"fmt"
	"math"
	"strings"
)

// Payoff maps a terminal price and strike to a non-negative payout.
type Payoff interface {
	Payoff(terminal, strike float64) float64
}

// PayoffFunc adapts a plain function to the Payoff interface.
type PayoffFunc func(terminal, strike float64) float64

func (f PayoffFunc) Payoff(terminal, strike float64) float64 {
	return f(terminal, strike)
}

type callPayoff struct{}

func (callPayoff) Payoff(terminal, strike float64) float64 {
	return math.Max(terminal-strike, 0)
}

type putPayoff struct{}

func (putPayoff) Payoff(terminal, strike float64) float64 {
	return math.Max(strike-terminal, 0)
}

var (
	Call Payoff = callPayoff{}
	Put  Payoff = putPayoff{}
)

// OptionType selects the call or put branch of a European option.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Payoff returns the standard payoff for the option type, or nil for an
// unknown type.
func (o OptionType) Payoff() Payoff {
	switch o {
	case OptionCall:
		return Call
	case OptionPut:
		return Put
	}
	return nil
}

func ParseOptionType(s string) (OptionType, error) {
	switch o := OptionType(strings.ToLower(strings.TrimSpace(s))); o {
	case OptionCall, OptionPut:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOptionType, s)
}
