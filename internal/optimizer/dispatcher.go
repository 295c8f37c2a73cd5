package optimizer

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/checkout/internal/basket"
	"github.com/specialistvlad/checkout/internal/ctxlog"
)

// Params are the request fields shared by both endpoints.
type Params struct {
	Point    basket.Point
	Radius   int
	Exchange int
	Cards    Cards
}

// Poster sends one request to an optimizer endpoint.
type Poster interface {
	URL(endpoint string) string
	Post(ctx context.Context, endpoint string, body any) (*Response, error)
}

// Dispatcher runs the endpoints one after another and echoes every response
// to out as it arrives.
type Dispatcher struct {
	client Poster
	out    io.Writer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(client Poster, out io.Writer) *Dispatcher {
	return &Dispatcher{client: client, out: out}
}

// Dispatch posts doc to every endpoint in Endpoints order. A failed call is
// reported and skipped so the remaining endpoints still run; its entry is
// simply absent from the returned Responses.
func (d *Dispatcher) Dispatch(ctx context.Context, doc basket.Document, p Params) Responses {
	logger := ctxlog.FromContext(ctx)
	cards := p.Cards
	if cards == nil {
		cards = DefaultDiscountCards
	}

	responses := make(Responses, len(Endpoints))
	for _, endpoint := range Endpoints {
		body := doc.With(p.Point, p.Radius, p.Exchange, cards.For(endpoint))
		url := d.client.URL(endpoint)

		resp, err := d.client.Post(ctx, endpoint, body)
		if err != nil {
			logger.Error("Optimizer request failed.", "endpoint", endpoint, "url", url, "error", err)
			fmt.Fprintf(d.out, "POST %s failed: %v\n", url, err)
			continue
		}

		fmt.Fprintf(d.out, "POST %s -> %d\n", url, resp.StatusCode)
		fmt.Fprintln(d.out, string(resp.Body))
		responses[endpoint] = resp
	}
	return responses
}
