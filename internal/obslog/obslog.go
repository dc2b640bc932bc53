// Package obslog builds the zap.Logger used to trace saturation rounds
// under --verbose, grounded on the nerd CLI's PersistentPreRunE logger
// setup: production JSON config by default, debug level when verbose is
// requested.
package obslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger. verbose switches the minimum level from Info
// down to Debug so callers can log one entry per stratum round without
// flooding a non-verbose run.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// Nop returns a logger that discards everything, for callers (tests,
// library embedders) that don't want CLI-style JSON logging at all.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// StratumRound logs one round of a stratum's fixed-point loop: the stratum
// index, the round number and whether any store changed.
func StratumRound(logger *zap.Logger, strataIndex, round int, changed bool) {
	logger.Debug("stratum round",
		zap.Int("stratum", strataIndex),
		zap.Int("round", round),
		zap.Bool("changed", changed),
	)
}

// SaturationDone logs the terminal event of a full Saturate call.
func SaturationDone(logger *zap.Logger, strata int, err error) {
	if err != nil {
		logger.Error("saturation failed", zap.Int("strata", strata), zap.Error(err))
		return
	}
	logger.Info("saturation complete", zap.Int("strata", strata))
}
