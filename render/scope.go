package render

import (
	"strings"

	"github.com/dkeller/brace/data"
)

// scope is a chain of binding frames.  The root frame holds the caller's
// data map; each loop iteration links a frame carrying the current item and
// its position.  Frames are derived views, never copies: the caller's data
// is not touched and a frame is discarded when its iteration ends.
type scope struct {
	parent *scope
	data   data.Map   // root frame only
	item   data.Value // loop frames only
	index  int        // zero-based iteration position
}

func newScope(m data.Map) *scope {
	return &scope{data: m}
}

// loopFrame derives the ephemeral per-iteration scope.
func (s *scope) loopFrame(item data.Value, index int) *scope {
	return &scope{parent: s, item: item, index: index}
}

// resolve looks up a dotted path.  Loop frames resolve the identifiers
// this, @index, and @order, then try the item itself, then fall through to
// the enclosing scope; the root frame resolves against the caller's data.
func (s *scope) resolve(path string) data.Value {
	if s.parent == nil {
		return data.Resolve(s.data, path)
	}
	var segments = strings.Split(path, ".")
	switch segments[0] {
	case "this":
		return data.ResolveSegments(s.item, segments[1:])
	case "@index":
		if len(segments) == 1 {
			return data.Int(s.index)
		}
		return data.Undefined{}
	case "@order":
		if len(segments) == 1 {
			return data.Int(s.index + 1)
		}
		return data.Undefined{}
	}
	if v := data.ResolveSegments(s.item, segments); !isUndefined(v) {
		return v
	}
	return s.parent.resolve(path)
}

func isUndefined(v data.Value) bool {
	_, ok := v.(data.Undefined)
	return ok
}
