package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/checkout/internal/ctxlog"
	"github.com/specialistvlad/checkout/internal/optimizer"
	"github.com/specialistvlad/checkout/internal/profile"
	"github.com/specialistvlad/checkout/internal/savings"
)

// Run failure classes. Callers match them with errors.Is to pick an exit code.
var (
	ErrProfile = errors.New("failed to load profile")
	ErrBasket  = errors.New("failed to load basket")
	ErrReport  = errors.New("failed to compute savings")
)

// Run loads the basket, prices it on both optimizer endpoints and prints the
// savings report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg := a.config
	a.logger.Debug("App.Run method started.")

	cards := optimizer.DefaultDiscountCards
	timeout := cfg.Timeout
	if cfg.ProfilePath != "" {
		p, err := profile.Load(ctx, cfg.ProfilePath)
		if err != nil {
			return fmt.Errorf("%w %s: %w", ErrProfile, cfg.ProfilePath, err)
		}
		cards = p.Apply(cards)
		if !cfg.TimeoutSet {
			timeout = p.Timeout
		}
	}

	doc, err := a.loader.Load(ctx, cfg.BasketPath)
	if err != nil {
		a.logger.Error("Basket could not be loaded.", "path", cfg.BasketPath, "error", err)
		return fmt.Errorf("%w %s: %w", ErrBasket, cfg.BasketPath, err)
	}

	a.logger.Info("Pricing basket.",
		"service_url", cfg.ServiceURL,
		"radius", cfg.Radius,
		"exchange", cfg.Exchange,
		"lat", cfg.Point.Lat,
		"lon", cfg.Point.Lon,
		"timeout", timeout,
	)

	client := optimizer.NewClient(cfg.ServiceURL, a.httpClient, timeout)
	responses := optimizer.NewDispatcher(client, a.outW).Dispatch(ctx, doc, optimizer.Params{
		Point:    cfg.Point,
		Radius:   cfg.Radius,
		Exchange: cfg.Exchange,
		Cards:    cards,
	})

	for _, endpoint := range optimizer.Endpoints {
		if resp, ok := responses[endpoint]; ok {
			fmt.Fprintf(a.outW, "%s: %s\n", endpoint, resp.Status)
		} else {
			fmt.Fprintf(a.outW, "%s: no response\n", endpoint)
		}
	}

	report, err := savings.FromResponses(responses)
	if err != nil {
		a.logger.Error("Savings could not be computed.", "error", err)
		return fmt.Errorf("%w: %w", ErrReport, err)
	}
	if err := report.Print(a.outW); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.logger.Info("Savings computed.", "cost_pct", report.Cost, "price_pct", report.Price)
	a.logger.Debug("App.Run method finished.")
	return nil
}
