package brace

import (
	"go.uber.org/zap"

	"github.com/dkeller/brace/loader"
)

type config struct {
	baseDir         string
	logger          *zap.Logger
	cacheDisabled   bool
	dedup           bool
	maxPartialDepth int
	readFile        loader.ReadFileFunc
	stat            loader.StatFunc
}

// Option configures an Engine.
type Option func(*config)

// WithBaseDir sets the folder that relative template references are
// resolved against.
func WithBaseDir(dir string) Option {
	return func(c *config) { c.baseDir = dir }
}

// WithLogger sets the logger that receives recoverable warnings, such as a
// reference to an unregistered partial.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCacheDisabled makes every file render re-read its file.
func WithCacheDisabled() Option {
	return func(c *config) { c.cacheDisabled = true }
}

// WithReadDeduplication shares one in-flight file read among concurrent
// renders of the same uncached file.
func WithReadDeduplication() Option {
	return func(c *config) { c.dedup = true }
}

// WithMaxPartialDepth sets the partial recursion ceiling.
func WithMaxPartialDepth(n int) Option {
	return func(c *config) { c.maxPartialDepth = n }
}

// WithReadFile replaces the storage read function used for file templates.
func WithReadFile(f loader.ReadFileFunc) Option {
	return func(c *config) { c.readFile = f }
}

// WithStat replaces the fingerprint function used for cache coherency.
func WithStat(f loader.StatFunc) Option {
	return func(c *config) { c.stat = f }
}
