// Package timeouts holds the deadlines used around document-store I/O.
//
//   - Ping: health checks
//   - Read: single-document reads (profile, one report)
//   - Query: collection scans (a user's reports)
//   - Write: inserts and updates
//   - Sync: a whole synchronizer operation, retries included
//
// Values start at the defaults and can be changed once at startup with
// Configure.
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Defaults.
const (
	DefaultPing  = 2 * time.Second
	DefaultRead  = 5 * time.Second
	DefaultQuery = 10 * time.Second
	DefaultWrite = 10 * time.Second
	DefaultSync  = 30 * time.Second
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping  time.Duration `json:"ping"`
	Read  time.Duration `json:"read"`
	Query time.Duration `json:"query"`
	Write time.Duration `json:"write"`
	Sync  time.Duration `json:"sync"`
}

func defaults() Config {
	return Config{
		Ping:  DefaultPing,
		Read:  DefaultRead,
		Query: DefaultQuery,
		Write: DefaultWrite,
		Sync:  DefaultSync,
	}
}

var current atomic.Pointer[Config]

func init() { Reset() }

func load() Config { return *current.Load() }

func Ping() time.Duration  { return load().Ping }
func Read() time.Duration  { return load().Read }
func Query() time.Duration { return load().Query }
func Write() time.Duration { return load().Write }
func Sync() time.Duration  { return load().Sync }

// Configure overrides the non-zero fields of cfg.
func Configure(cfg Config) {
	next := load()
	if cfg.Ping > 0 {
		next.Ping = cfg.Ping
	}
	if cfg.Read > 0 {
		next.Read = cfg.Read
	}
	if cfg.Query > 0 {
		next.Query = cfg.Query
	}
	if cfg.Write > 0 {
		next.Write = cfg.Write
	}
	if cfg.Sync > 0 {
		next.Sync = cfg.Sync
	}
	current.Store(&next)
}

// Reset restores the defaults.
func Reset() {
	d := defaults()
	current.Store(&d)
}

// Current returns the active configuration.
func Current() Config { return load() }

// WithTimeout derives a context with timeout whose cancel func logs a
// warning when the deadline, rather than the caller, ended it.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Query(), s.log, "list reports")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
