// Package savings compares the nationwide-card and nearby-card optimizer
// results of one basket.
package savings

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/specialistvlad/checkout/internal/optimizer"
)

var (
	// ErrZeroDenominator is returned when the nearby result is zero.
	ErrZeroDenominator = errors.New("nearby result is zero")
	// ErrMissingResponse is returned when an endpoint produced no response.
	ErrMissingResponse = errors.New("no response")
)

// Percent returns (1 - a/b) * 100: how much cheaper a is than b, in percent.
// Negative values mean a is more expensive. The value is computed as
// (b-a)*100/b so that whole-number inputs give exact results.
func Percent(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrZeroDenominator
	}
	return (b - a) * 100 / b, nil
}

// Report is the outcome of a run.
type Report struct {
	Generic optimizer.Result
	Local   optimizer.Result
	Cost    float64
	Price   float64
}

// Compute builds the report with generic (the products endpoint) as a and
// local (nearby-products) as b.
func Compute(generic, local optimizer.Result) (Report, error) {
	cost, err := Percent(generic.Cost, local.Cost)
	if err != nil {
		return Report{}, fmt.Errorf("cost: %w", err)
	}
	price, err := Percent(generic.Price, local.Price)
	if err != nil {
		return Report{}, fmt.Errorf("price: %w", err)
	}
	return Report{Generic: generic, Local: local, Cost: cost, Price: price}, nil
}

// FromResponses extracts both results and computes the report. Every missing
// or malformed piece is an error naming the endpoint.
func FromResponses(responses optimizer.Responses) (Report, error) {
	generic, err := resultOf(responses, optimizer.EndpointProducts)
	if err != nil {
		return Report{}, err
	}
	local, err := resultOf(responses, optimizer.EndpointNearbyProducts)
	if err != nil {
		return Report{}, err
	}
	return Compute(generic, local)
}

func resultOf(responses optimizer.Responses, endpoint string) (optimizer.Result, error) {
	resp, ok := responses[endpoint]
	if !ok || resp == nil {
		return optimizer.Result{}, fmt.Errorf("%s: %w", endpoint, ErrMissingResponse)
	}
	return resp.Result()
}

// Print writes both percentages to w.
func (r Report) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "cost savings, %%: %s\nprice savings, %%: %s\n", FormatPercent(r.Cost), FormatPercent(r.Price))
	return err
}

// FormatPercent prints the shortest decimal that round-trips, keeping a
// ".0" on whole numbers so 20 reads as 20.0. Magnitudes of 1e16 and above or
// below 1e-4 switch to exponent form (1e+20, 1e-05).
func FormatPercent(v float64) string {
	if abs := math.Abs(v); abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}
