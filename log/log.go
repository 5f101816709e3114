// Copyright (c) 2025 The go-quai-stake developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin structured-logging layer over log/slog. Packages
// create their own logger with WithContext and attach key/value pairs the
// slog way; the daemon configures the root handler once at startup.
package log

import (
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
)

// Level aliases so callers don't import slog for configuration.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger carries a component context.
type Logger = *slog.Logger

var (
	root     atomic.Pointer[slog.Logger]
	rootLevl = new(slog.LevelVar)
)

func init() {
	root.Store(slog.New(newHandler(os.Stderr)))
}

// Init configures the root logger's verbosity. Level strings follow slog
// ("debug", "info", "warn", "error").
func Init(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	rootLevl.Set(l)
	return nil
}

// WithContext returns a logger tagged with the given key/value pairs,
// conventionally ("pkg", "<package>").
func WithContext(kv ...any) Logger {
	return root.Load().With(kv...)
}

func Debug(msg string, kv ...any) { root.Load().Debug(msg, kv...) }
func Info(msg string, kv ...any)  { root.Load().Info(msg, kv...) }
func Warn(msg string, kv ...any)  { root.Load().Warn(msg, kv...) }
func Error(msg string, kv ...any) { root.Load().Error(msg, kv...) }

// Crit logs at error level and exits.
func Crit(msg string, kv ...any) {
	root.Load().Error(msg, kv...)
	os.Exit(1)
}

func newHandler(f *os.File) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       rootLevl,
		ReplaceAttr: replaceAttr,
	}
	if isatty.IsTerminal(f.Fd()) {
		return slog.NewTextHandler(f, opts)
	}
	return slog.NewJSONHandler(f, opts)
}

// replaceAttr renders big numbers as decimal strings and trims timestamps to
// second precision.
func replaceAttr(_ []string, attr slog.Attr) slog.Attr {
	switch v := attr.Value.Any().(type) {
	case *big.Int:
		if v != nil {
			attr.Value = slog.StringValue(v.String())
		}
	case *uint256.Int:
		if v != nil {
			attr.Value = slog.StringValue(v.Dec())
		}
	case time.Time:
		attr.Value = slog.TimeValue(v.Truncate(time.Second))
	}
	return attr
}
