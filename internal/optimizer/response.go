package optimizer

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned when a result lacks cost or price.
var ErrMissingField = errors.New("missing numeric field")

// Response is the raw outcome of one optimizer call.
type Response struct {
	Endpoint   string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	RequestID  string
}

// Result holds the figures the savings report compares. The optimizer sends
// more (the chosen stores and their products), which is ignored here.
type Result struct {
	Cost  float64
	Price float64
}

type resultBody struct {
	Cost  *float64 `json:"cost"`
	Price *float64 `json:"price"`
}

// Result decodes cost and price from the response body. The status code is
// not checked: an error payload simply fails on the missing fields.
func (r *Response) Result() (Result, error) {
	var body resultBody
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return Result{}, fmt.Errorf("failed to decode %s response (%s): %w", r.Endpoint, r.Status, err)
	}
	if body.Cost == nil {
		return Result{}, fmt.Errorf("%s response: cost: %w", r.Endpoint, ErrMissingField)
	}
	if body.Price == nil {
		return Result{}, fmt.Errorf("%s response: price: %w", r.Endpoint, ErrMissingField)
	}
	return Result{Cost: *body.Cost, Price: *body.Price}, nil
}

// Responses holds the per-endpoint outcomes of a run. Endpoints whose call
// failed have no entry.
type Responses map[string]*Response
