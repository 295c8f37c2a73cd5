package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/checkout/internal/app"
	"github.com/specialistvlad/checkout/internal/basket"
)

// Exit codes.
const (
	CodeOK     = 0
	CodeBasket = 1
	CodeUsage  = 2
	CodeReport = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// requiredFlags must all be given on the command line.
var requiredFlags = []string{"json_path", "service_url", "radius", "exchange", "lat", "lon"}

// Environment fallbacks for the optional flags.
var envFallbacks = map[string]string{
	"log-level":  "CHECKOUT_LOG_LEVEL",
	"log-format": "CHECKOUT_LOG_FORMAT",
	"log-file":   "CHECKOUT_LOG_FILE",
	"profile":    "CHECKOUT_PROFILE",
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("checkout", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
checkout - compares optimizer basket prices with nationwide and nearby discount cards.

Usage:
  checkout --json_path FILE --service_url URL --radius N --exchange N --lat LAT --lon LON [options]

Required:
  --json_path    Basket file (.json, .yaml) or s3://bucket/key.
  --service_url  Optimizer base URL, e.g. http://localhost:8080.
  --radius       Store search radius.
  --exchange     Exchange factor passed to the optimizer.
  --lat, --lon   User location.

Options:
`)
		flagSet.PrintDefaults()
	}

	jsonPathFlag := flagSet.String("json_path", "", "Path to the basket document.")
	serviceURLFlag := flagSet.String("service_url", "", "Base URL of the optimizer service.")
	radiusFlag := flagSet.Int("radius", 0, "Store search radius.")
	exchangeFlag := flagSet.Int("exchange", 0, "Exchange factor.")
	latFlag := flagSet.Float64("lat", 0, "User latitude.")
	lonFlag := flagSet.Float64("lon", 0, "User longitude.")

	profileFlag := flagSet.String("profile", "", "Optional HCL run profile with discount card overrides.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Per-request timeout, e.g. 30s. 0 waits forever.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFileFlag := flagSet.String("log-file", "", "Write logs to this file (rotated) instead of stderr.")
	envFileFlag := flagSet.String("env-file", ".env", "Dotenv file loaded before reading CHECKOUT_* variables. Missing file is ignored.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		flagSet.Usage()
		return nil, false, &ExitError{Code: CodeUsage, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var missing []string
	for _, name := range requiredFlags {
		if !set[name] {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		flagSet.Usage()
		return nil, false, &ExitError{Code: CodeUsage, Message: "missing required flags: " + strings.Join(missing, ", ")}
	}

	if err := godotenv.Load(*envFileFlag); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, false, &ExitError{Code: CodeUsage, Message: fmt.Sprintf("failed to load env file %s: %v", *envFileFlag, err)}
	}
	for name, env := range envFallbacks {
		if set[name] {
			continue
		}
		if v, ok := os.LookupEnv(env); ok {
			if err := flagSet.Set(name, v); err != nil {
				return nil, false, &ExitError{Code: CodeUsage, Message: fmt.Sprintf("invalid %s: %v", env, err)}
			}
			slog.Debug("Flag taken from environment.", "flag", name, "env", env)
		}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: CodeUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: CodeUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		BasketPath:  *jsonPathFlag,
		ServiceURL:  *serviceURLFlag,
		Radius:      *radiusFlag,
		Exchange:    *exchangeFlag,
		Point:       basket.Point{Lat: *latFlag, Lon: *lonFlag},
		ProfilePath: *profileFlag,
		Timeout:     *timeoutFlag,
		TimeoutSet:  set["timeout"],
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		LogFile:     *logFileFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: CodeUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// Exit converts an error returned by App.Run into an ExitError.
func Exit(err error) *ExitError {
	var exitErr *ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return exitErr
	case errors.Is(err, app.ErrBasket):
		return &ExitError{Code: CodeBasket, Message: err.Error()}
	case errors.Is(err, app.ErrProfile):
		return &ExitError{Code: CodeUsage, Message: err.Error()}
	case errors.Is(err, app.ErrReport):
		return &ExitError{Code: CodeReport, Message: err.Error()}
	default:
		return &ExitError{Code: 1, Message: err.Error()}
	}
}
