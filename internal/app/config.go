package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/checkout/internal/basket"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	BasketPath string // local file or s3://bucket/key
	ServiceURL string // optimizer base URL
	Radius     int
	Exchange   int
	Point      basket.Point

	ProfilePath string
	Timeout     time.Duration // per request, zero means none
	TimeoutSet  bool          // Timeout was given explicitly and wins over the profile

	LogFormat string
	LogLevel  string
	LogFile   string
}

// NewConfig checks the fields the run cannot do without. Radius, exchange and
// the point are forwarded to the optimizer as given.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BasketPath == "" {
		return nil, errors.New("BasketPath is a required configuration field and cannot be empty")
	}
	if cfg.ServiceURL == "" {
		return nil, errors.New("ServiceURL is a required configuration field and cannot be empty")
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("Timeout cannot be negative")
	}

	return &cfg, nil
}
