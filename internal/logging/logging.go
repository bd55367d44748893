// Package logging provides structured logging for the analytical core's
// external collaborators (CLI, broker adapter, journal). The pure analytical
// packages (pricing, position, pnl, normalization) never log — per spec.md
// §7, they surface errors to their caller instead.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"optionarb/internal/config"
)

// NewLogger builds a zerolog.Logger from a LoggingConfig, console + rotating
// file sink, mirroring the teacher's NewLoggerWithConfig.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger attaches a logger to ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from ctx, or a no-op logger if absent.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}

// LogScanStart logs the beginning of a scanner run.
func LogScanStart(logger zerolog.Logger, sym1, sym2 string, right string, pairCount int) {
	logger.Info().
		Str("event", "scan_start").
		Str("sym1", sym1).
		Str("sym2", sym2).
		Str("right", right).
		Int("candidate_pairs", pairCount).
		Msg("scan started")
}

// LogScanComplete logs the end of a scanner run.
func LogScanComplete(logger zerolog.Logger, resultCount int, partial bool, duration time.Duration) {
	logger.Info().
		Str("event", "scan_complete").
		Int("results", resultCount).
		Bool("partial", partial).
		Dur("duration", duration).
		Msg("scan complete")
}

// LogPriceWarning logs a liquidity warning attached to a PriceQuote.
func LogPriceWarning(logger zerolog.Logger, symbol string, strike float64, right string, warning string) {
	logger.Warn().
		Str("event", "price_warning").
		Str("symbol", symbol).
		Float64("strike", strike).
		Str("right", right).
		Str("warning", warning).
		Msg("liquidity warning")
}

// LogStaleRefusal logs a Position.Build refusal due to a stale leg price.
func LogStaleRefusal(logger zerolog.Logger, symbol string, strike float64, right string) {
	logger.Warn().
		Str("event", "stale_refusal").
		Str("symbol", symbol).
		Float64("strike", strike).
		Str("right", right).
		Msg("position build refused: stale leg price")
}

// LogPosition logs a successfully built position.
func LogPosition(logger zerolog.Logger, strategyType string, totalCredit, margin float64) {
	logger.Info().
		Str("event", "position_built").
		Str("strategy_type", strategyType).
		Float64("total_credit", totalCredit).
		Float64("estimated_margin", margin).
		Msg("position built")
}

// LogBrokerCall logs a broker adapter call's outcome.
func LogBrokerCall(logger zerolog.Logger, operation string, duration time.Duration, err error) {
	event := logger.Debug().
		Str("event", "broker_call").
		Str("operation", operation).
		Dur("duration", duration)
	if err != nil {
		event.Err(err).Msg("broker call failed")
	} else {
		event.Msg("broker call completed")
	}
}
