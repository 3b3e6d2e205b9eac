// Package config generalizes the teacher's functional-options configs
// (config.go: configs/New(..., options ...func(*configs))) from "BDD
// sizing knobs" (node table size, cache ratio, GC thresholds) to
// "toolchain knobs" (search deadline, target set, solver cache size).
// Same shape: a defaults-filled struct, then zero or more Option
// functions applied in order, the same way rudd's Nodesize/Cachesize/
// Maxnodesize options layer onto makeconfigs' defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/synapse-nf/synbdd/internal/logging"
)

// Default knob values, mirroring the role rudd's _MINFREENODES/
// _DEFAULTMAXNODEINC constants play for BDD sizing.
const (
	DefaultSearchDeadline  = 30 * time.Second
	DefaultSolverCacheSize = 10000
)

// Config holds every knob shared across the three CLI tools.
type Config struct {
	// SearchDeadline is the search time budget kept for
	// internal/planner.Driver.Run (spec.md §4.5 leaves termination to
	// exhaustion or a caller-supplied deadline). Driver.Run does not read
	// it and has no deadline of its own.
	SearchDeadline time.Duration

	// Targets restricts the planner to this subset of target names
	// (e.g. "tofino", "x86"). It is empty by default; cmd/synthesizer
	// rejects an empty selection.
	Targets []string

	// SolverCacheSize is a size for the oracle's memoized always-X query
	// cache (expr.Oracle), mirroring rudd's Cachesize option. expr.New
	// does not take it: the oracle's cache is created with a fixed cap of
	// 4096 entries.
	SolverCacheSize int

	// IgnoreChecksumModifications opts into
	// reorder.IgnoreChecksumModifications (spec.md §9); off by default
	// per the source's own caveat about its fragility.
	IgnoreChecksumModifications bool

	// LogLevel and Quiet are passed straight to internal/logging.New.
	LogLevel logging.Level
	Quiet    bool
}

func defaults() *Config {
	return &Config{
		SearchDeadline:  DefaultSearchDeadline,
		SolverCacheSize: DefaultSolverCacheSize,
		LogLevel:        logging.LevelInfo,
	}
}

// Option mutates a Config being built by New.
type Option func(*Config)

// New builds a Config from defaults, applying options in order —
// the same defaults-then-override flow as rudd's makeconfigs followed by
// its option functions.
func New(options ...Option) *Config {
	c := defaults()
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithSearchDeadline sets Config.SearchDeadline (see the field's doc for
// what reads it).
func WithSearchDeadline(d time.Duration) Option {
	return func(c *Config) { c.SearchDeadline = d }
}

// WithTargets restricts the planner to the named targets.
func WithTargets(names ...string) Option {
	return func(c *Config) { c.Targets = names }
}

// WithSolverCacheSize sets Config.SolverCacheSize (see the field's doc
// for what reads it). A size below 1 is ignored, mirroring Nodesize's own sanity check on its
// argument.
func WithSolverCacheSize(size int) Option {
	return func(c *Config) {
		if size >= 1 {
			c.SolverCacheSize = size
		}
	}
}

// WithIgnoreChecksumModifications toggles the opt-in checksum heuristic.
func WithIgnoreChecksumModifications(enabled bool) Option {
	return func(c *Config) { c.IgnoreChecksumModifications = enabled }
}

// WithLogLevel sets the shared logger's verbosity.
func WithLogLevel(level logging.Level) Option {
	return func(c *Config) { c.LogLevel = level }
}

// WithQuiet forces error-only logging.
func WithQuiet(quiet bool) Option {
	return func(c *Config) { c.Quiet = quiet }
}

// FromEnv reads SYNBDD_-prefixed environment variables into Options.
// cmd/*'s main.go pass them to New before their flag-derived options, and
// New applies options in order, so flags win over environment and
// environment wins over defaults.
func FromEnv() []Option {
	var opts []Option
	if v, ok := os.LookupEnv("SYNBDD_SEARCH_DEADLINE"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			opts = append(opts, WithSearchDeadline(d))
		}
	}
	if v, ok := os.LookupEnv("SYNBDD_TARGETS"); ok && v != "" {
		opts = append(opts, WithTargets(strings.Split(v, ",")...))
	}
	if v, ok := os.LookupEnv("SYNBDD_SOLVER_CACHE_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts = append(opts, WithSolverCacheSize(n))
		}
	}
	if v, ok := os.LookupEnv("SYNBDD_IGNORE_CHECKSUM_MODIFICATIONS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			opts = append(opts, WithIgnoreChecksumModifications(b))
		}
	}
	if v, ok := os.LookupEnv("SYNBDD_LOG_LEVEL"); ok && v != "" {
		opts = append(opts, WithLogLevel(logging.Level(v)))
	}
	return opts
}
