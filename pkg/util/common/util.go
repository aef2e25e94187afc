// Useful routines used in several other packages.
package common

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zap.DebugLevel
	case "INFO":
		return zap.InfoLevel
	case "ERROR":
		return zap.ErrorLevel
	case "WARN":
		return zap.WarnLevel
	case "FATAL":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// SetupLogger installs a console logger on standard error as the global one.
func SetupLogger(level string) (*zap.Logger, *zap.SugaredLogger) {
	logger, err := NewLogger(os.Stderr, level, "")
	if err != nil {
		panic(err) // unreachable without filter rules
	}
	zap.ReplaceGlobals(logger)
	return logger, logger.Sugar()
}

// SetupFilteredLogger is SetupLogger with zapfilter rules, e.g. "debug:vm info:*".
func SetupFilteredLogger(level, rules string) (*zap.Logger, *zap.SugaredLogger, error) {
	logger, err := NewLogger(os.Stderr, level, rules)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, logger.Sugar(), nil
}

// NewLogger builds a development console logger writing to w. Program output
// owns standard output, so logs never go there. With filter rules the level is
// ignored and the rules alone select entries.
func NewLogger(w io.Writer, level, rules string) (*zap.Logger, error) {
	lvl := parseLevel(level)
	if rules != "" {
		lvl = zap.DebugLevel
	}
	al := zap.NewAtomicLevelAt(lvl)
	ec := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), al)
	if rules != "" {
		filter, err := zapfilter.ParseRules(rules)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log filter %q", rules)
		}
		core = zapfilter.NewFilteringCore(core, filter)
	}
	return zap.New(core), nil
}
