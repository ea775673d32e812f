// Package render executes a parsed directive tree against a binding
// context, writing the expanded text to an io.Writer.  Evaluation is
// nesting-aware: conditionals, loops, and partials inside a loop body are
// evaluated per iteration against that iteration's scope.
package render

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"go.uber.org/zap"

	"github.com/dkeller/brace/ast"
	"github.com/dkeller/brace/data"
)

// DefaultMaxPartialDepth bounds partial expansion when no limit is
// configured.  A partial that includes itself, directly or transitively,
// fails the render once this many nested expansions are reached.
const DefaultMaxPartialDepth = 64

// ErrPartialDepthExceeded is returned (wrapped) when partial expansion
// recurses past the configured ceiling.
var ErrPartialDepthExceeded = errors.New("partial recursion limit exceeded")

// PartialSource resolves a partial name to its parsed body.
type PartialSource interface {
	Partial(name string) (*ast.ListNode, bool)
}

// Renderer executes directive trees.  The zero value renders with no
// partials, the default depth limit, and no logging.
type Renderer struct {
	Partials        PartialSource // source of registered fragments; may be nil
	MaxPartialDepth int           // 0 means DefaultMaxPartialDepth
	Logger          *zap.Logger   // warning channel for recoverable conditions; may be nil
}

// state represents the state of one execution.
type state struct {
	wr       io.Writer
	node     ast.Node // current node, for errors
	context  *scope
	partials PartialSource
	depth    int // current partial expansion depth
	maxDepth int
	logger   *zap.Logger
}

// Execute expands the tree against the given binding context and writes the
// result to wr.  The context is read-only to the renderer; concurrent
// Executes against the same tree and context are independent.
func (r Renderer) Execute(wr io.Writer, tree *ast.ListNode, m data.Map) (err error) {
	if tree == nil {
		return errors.New("render: nil template tree")
	}
	var maxDepth = r.MaxPartialDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxPartialDepth
	}
	var logger = r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &state{
		wr:       wr,
		context:  newScope(m),
		partials: r.Partials,
		maxDepth: maxDepth,
		logger:   logger,
	}
	defer s.errRecover(&err)
	s.walk(tree)
	return
}

// at marks the state to be on node n, for error reporting.
func (s *state) at(node ast.Node) {
	s.node = node
}

// errorf formats the error and terminates processing.
func (s *state) errorf(format string, args ...interface{}) {
	panic(fmt.Errorf("render: offset %d: %s", s.node.Position(), fmt.Sprintf(format, args...)))
}

// errRecover is the handler that turns panics into returns from the top
// level of Execute.
func (s *state) errRecover(errp *error) {
	if e := recover(); e != nil {
		switch e := e.(type) {
		case runtime.Error:
			*errp = fmt.Errorf("render: offset %d: %v", s.node.Position(), e)
		case error:
			*errp = e
		default:
			*errp = fmt.Errorf("render: offset %d: %v", s.node.Position(), e)
		}
	}
}

// walk recursively goes through each node, executing the indicated logic
// and writing the output.
func (s *state) walk(node ast.Node) {
	s.at(node)
	switch node := node.(type) {
	case *ast.ListNode:
		for _, n := range node.Nodes {
			s.walk(n)
		}
	case *ast.RawTextNode:
		if _, err := io.WriteString(s.wr, node.Text); err != nil {
			s.errorf("%s", err)
		}
	case *ast.InterpolationNode:
		s.evalInterpolation(node)
	case *ast.IfNode:
		if s.context.resolve(node.Path).Truthy() != node.Not {
			s.walk(node.Body)
		}
	case *ast.EachNode:
		s.evalEach(node)
	case *ast.PartialNode:
		s.evalPartial(node)
	default:
		s.errorf("unknown node: %T", node)
	}
}

// evalInterpolation writes the resolved value of a {{ path }} or
// {{{ path }}} tag.  The literal default applies only when the path
// resolves to null or nothing at all; falsy-but-present values print
// themselves.
func (s *state) evalInterpolation(node *ast.InterpolationNode) {
	var text string
	switch val := s.context.resolve(node.Path); val.(type) {
	case data.Undefined, data.Null:
		if !node.HasDefault {
			return
		}
		text = node.Default
	default:
		text = val.String()
	}
	if node.Raw {
		if _, err := io.WriteString(s.wr, text); err != nil {
			s.errorf("%s", err)
		}
		return
	}
	htmlEscapeString(s.wr, text)
}

// evalEach runs the loop body once per element of the resolved list, each
// iteration in its own loop frame.  When the path resolves to anything but
// a non-empty list, the {{empty}} section runs against the outer scope.
func (s *state) evalEach(node *ast.EachNode) {
	var list, ok = s.context.resolve(node.Path).(data.List)
	if !ok || len(list) == 0 {
		if node.Empty != nil {
			s.walk(node.Empty)
		}
		return
	}
	var outer = s.context
	for i, item := range list {
		s.context = outer.loopFrame(item, i)
		s.walk(node.Body)
	}
	s.context = outer
}

// evalPartial expands a {{> name}} inclusion against the scope active at
// the point of inclusion.  A missing partial is recoverable: it renders as
// empty text and emits a warning.
func (s *state) evalPartial(node *ast.PartialNode) {
	var body *ast.ListNode
	var ok bool
	if s.partials != nil {
		body, ok = s.partials.Partial(node.Name)
	}
	if !ok {
		s.logger.Warn("partial not registered", zap.String("partial", node.Name))
		return
	}
	if s.depth >= s.maxDepth {
		panic(fmt.Errorf("render: partial %q at depth %d: %w",
			node.Name, s.depth, ErrPartialDepthExceeded))
	}
	s.depth++
	s.walk(body)
	s.depth--
	s.at(node)
}
