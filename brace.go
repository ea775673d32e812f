package brace

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dkeller/brace/data"
	"github.com/dkeller/brace/loader"
	"github.com/dkeller/brace/parse"
	"github.com/dkeller/brace/partial"
	"github.com/dkeller/brace/render"
)

// Engine renders templates from strings and files against caller-supplied
// data, with a shared partial registry and a file-content cache.  An Engine
// is safe for concurrent use.
type Engine struct {
	baseDir         string
	logger          *zap.Logger
	partials        *partial.Registry
	cache           *loader.Cache
	maxPartialDepth int
}

// New returns an Engine with the given options applied.  By default the
// base directory is the working directory, caching is on, logging is off,
// and partial recursion is bounded at render.DefaultMaxPartialDepth.
func New(opts ...Option) *Engine {
	var cfg = config{
		baseDir: ".",
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var loaderOpts = []loader.Option{loader.WithLogger(cfg.logger)}
	if cfg.cacheDisabled {
		loaderOpts = append(loaderOpts, loader.Disabled())
	}
	if cfg.dedup {
		loaderOpts = append(loaderOpts, loader.WithReadDeduplication())
	}
	if cfg.readFile != nil {
		loaderOpts = append(loaderOpts, loader.WithReadFile(cfg.readFile))
	}
	if cfg.stat != nil {
		loaderOpts = append(loaderOpts, loader.WithStat(cfg.stat))
	}

	return &Engine{
		baseDir:         cfg.baseDir,
		logger:          cfg.logger,
		partials:        partial.NewRegistry(),
		cache:           loader.New(loaderOpts...),
		maxPartialDepth: cfg.maxPartialDepth,
	}
}

// RegisterPartial makes a named fragment available to {{> name}} tags.
// Re-registration overwrites.  Registration must happen before any render
// that references the name; a render hitting an unregistered name logs a
// warning and produces empty text there.
func (e *Engine) RegisterPartial(name, source string) error {
	return e.partials.Register(name, source)
}

// RenderString expands the inline template source against binding.
func (e *Engine) RenderString(source string, binding interface{}) (string, error) {
	return e.renderNamed("inline", source, binding)
}

// RenderFile resolves ref against the base directory, reads it through the
// cache, and expands it against binding.  An unreadable file fails the
// render.
func (e *Engine) RenderFile(ref string, binding interface{}) (string, error) {
	path, err := loader.Resolve(e.baseDir, ref)
	if err != nil {
		return "", fmt.Errorf("brace: resolve %s: %w", ref, err)
	}
	source, err := e.cache.Read(path)
	if err != nil {
		return "", err
	}
	return e.renderNamed(path, source, binding)
}

// Section is one independently rendered piece of a composite document.
// Exactly one of File or Source should be set; Data, when non-nil,
// overrides the shared binding for this section.
type Section struct {
	File   string      // template file reference, resolved against the base dir
	Source string      // inline template text
	Data   interface{} // optional binding for this section
}

// RenderSections renders each section in order and concatenates the
// results.  A section with no template is not an error: it is logged and
// contributes empty text.
func (e *Engine) RenderSections(sections []Section, binding interface{}) (string, error) {
	var b strings.Builder
	for i, section := range sections {
		var bind = section.Data
		if bind == nil {
			bind = binding
		}
		var out string
		var err error
		switch {
		case section.File != "":
			out, err = e.RenderFile(section.File, bind)
		case section.Source != "":
			out, err = e.RenderString(section.Source, bind)
		default:
			e.logger.Warn("section has no template", zap.Int("section", i))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("brace: section %d: %w", i, err)
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// Invalidate drops the cache entry for one template reference.
func (e *Engine) Invalidate(ref string) error {
	path, err := loader.Resolve(e.baseDir, ref)
	if err != nil {
		return fmt.Errorf("brace: resolve %s: %w", ref, err)
	}
	e.cache.Invalidate(path)
	return nil
}

// ClearCache drops all cached file content.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Watch invalidates cached files under the base directory as they change
// on disk.  The returned function stops watching.
func (e *Engine) Watch() (stop func() error, err error) {
	return e.cache.Watch(e.baseDir)
}

func (e *Engine) renderNamed(name, source string, binding interface{}) (string, error) {
	tree, err := parse.Parse(name, source)
	if err != nil {
		return "", err
	}
	m, err := toMap(binding)
	if err != nil {
		return "", err
	}
	var renderer = render.Renderer{
		Partials:        e.partials,
		MaxPartialDepth: e.maxPartialDepth,
		Logger:          e.logger,
	}
	var buf bytes.Buffer
	if err := renderer.Execute(&buf, tree, m); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toMap(binding interface{}) (data.Map, error) {
	if binding == nil {
		return make(data.Map), nil
	}
	m, ok := data.New(binding).(data.Map)
	if !ok {
		return nil, fmt.Errorf("brace: invalid binding type: expected map/struct, got %T", binding)
	}
	return m, nil
}
