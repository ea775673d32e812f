// Package ast contains definitions for the in-memory representation of a
// brace template: a tree of literal text, interpolations, conditionals,
// loops, and partial inclusions.
package ast

import (
	"bytes"
	"fmt"
)

// Node represents any singular piece of a template.  For example, a run of
// raw text or an interpolation tag.
type Node interface {
	String() string // String returns the template source representation of this node.
	Position() Pos  // byte position of start of node in full original input string
}

// ParentNode is any Node that has descendent nodes.
type ParentNode interface {
	Node
	Children() []Node
}

// Pos represents a byte position in the original input text from which this
// template was parsed.  It is useful to construct helpful error messages.
type Pos int

// Position returns this position.  It is implemented as a method so that
// Nodes may embed a Pos and fulfill this part of the Node interface for free.
func (p Pos) Position() Pos {
	return p
}

// ListNode holds a sequence of nodes.
type ListNode struct {
	Pos
	Nodes []Node // The element nodes in lexical order.
}

func (l *ListNode) String() string {
	b := new(bytes.Buffer)
	for _, n := range l.Nodes {
		fmt.Fprint(b, n)
	}
	return b.String()
}

func (l *ListNode) Children() []Node {
	return l.Nodes
}

// RawTextNode is a run of literal template text, output verbatim.
type RawTextNode struct {
	Pos
	Text string // The text; may span newlines.
}

func (t *RawTextNode) String() string {
	return t.Text
}

// InterpolationNode is a {{ path }} or {{{ path }}} tag, with an optional
// literal default applied when the path resolves to null or nothing at all.
type InterpolationNode struct {
	Pos
	Path       string
	Default    string // literal fallback, valid when HasDefault
	HasDefault bool
	Raw        bool // triple-brace: skip HTML escaping
}

func (n *InterpolationNode) String() string {
	var expr = n.Path
	if n.HasDefault {
		expr += fmt.Sprintf(" || %q", n.Default)
	}
	if n.Raw {
		return "{{{" + expr + "}}}"
	}
	return "{{" + expr + "}}"
}

// IfNode is a {{#if path}}...{{/if}} or {{#unless path}}...{{/unless}} block.
type IfNode struct {
	Pos
	Path string
	Not  bool // true for {{#unless}}
	Body *ListNode
}

func (n *IfNode) String() string {
	if n.Not {
		return "{{#unless " + n.Path + "}}" + n.Body.String() + "{{/unless}}"
	}
	return "{{#if " + n.Path + "}}" + n.Body.String() + "{{/if}}"
}

func (n *IfNode) Children() []Node {
	return []Node{n.Body}
}

// EachNode is a {{#each path}}...{{empty}}...{{/each}} block.  Empty is nil
// when the block has no {{empty}} section.
type EachNode struct {
	Pos
	Path  string
	Body  *ListNode
	Empty *ListNode
}

func (n *EachNode) String() string {
	var expr = "{{#each " + n.Path + "}}" + n.Body.String()
	if n.Empty != nil {
		expr += "{{empty}}" + n.Empty.String()
	}
	return expr + "{{/each}}"
}

func (n *EachNode) Children() []Node {
	if n.Empty == nil {
		return []Node{n.Body}
	}
	return []Node{n.Body, n.Empty}
}

// PartialNode is a {{> name}} inclusion of a registered fragment.
type PartialNode struct {
	Pos
	Name string
}

func (n *PartialNode) String() string {
	return "{{> " + n.Name + "}}"
}
