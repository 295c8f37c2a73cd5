package app

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/checkout/internal/basket"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	logSink    io.Closer
	config     *Config
	loader     *basket.Loader
	httpClient *http.Client
}

// Option customizes an App. Tests use options to swap in fakes.
type Option func(*App)

// WithHTTPClient makes the app call the optimizer through c. The configured
// timeout is then left to the caller.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) {
		a.httpClient = c
	}
}

// WithLoader replaces the basket loader.
func WithLoader(l *basket.Loader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// NewApp is the constructor for the main application. Results are written to
// outW; logs go to logW unless the config names a log file.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	sink := logWriter(cfg.LogFile, logW)
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, sink)
	logger.Debug("Logger configured successfully.", "level", cfg.LogLevel, "format", cfg.LogFormat, "file", cfg.LogFile)

	a := &App{
		outW:    outW,
		logger:  logger,
		logSink: sink,
		config:  cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.loader == nil {
		a.loader = basket.NewLoader()
	}
	return a
}

// Close releases the log file, if any.
func (a *App) Close() error {
	return a.logSink.Close()
}
