// Package parse converts template text into its in-memory representation
// (see the ast package).  The grammar has no nesting hazards: blocks are
// paired by recursive descent, so a {{#if}} body may freely contain further
// {{#if}} blocks.
package parse

import (
	"fmt"
	"runtime"

	"github.com/dkeller/brace/ast"
)

// tree is the parsed representation of a single template.
type tree struct {
	name      string        // name provided for the input
	root      *ast.ListNode // top-level root of the tree
	lex       *lexer        // lexer provides a sequence of tokens
	token     [2]item       // two-token lookahead
	peekCount int           // how many tokens have we backed up?
}

// Parse parses the input into a directive tree.  Structural errors
// (an unterminated block, a close tag with no matching open tag) are
// returned with the template name, line, and column; tag-level text that
// does not form a directive is literal output, not an error.
func Parse(name, text string) (node *ast.ListNode, err error) {
	var t = &tree{
		name: name,
		lex:  lex(name, text),
	}
	defer t.recover(&err)
	t.root = t.itemList(itemEOF)
	t.lex = nil
	return t.root, nil
}

// itemList:
//	textOrTag*
// Terminates when it comes across one of the given end tokens, which is
// consumed (and left in the lookahead buffer for the caller to inspect).
func (t *tree) itemList(until ...itemType) *ast.ListNode {
	var list *ast.ListNode
	for {
		var token = t.next()
		if list == nil {
			list = &ast.ListNode{Pos: token.pos}
		}
		if isOneOf(token.typ, until) {
			return list
		}
		list.Nodes = append(list.Nodes, t.parseNode(token))
	}
}

// parseNode converts one token (plus, for blocks, everything through the
// matching close tag) into a node.
func (t *tree) parseNode(token item) ast.Node {
	switch token.typ {
	case itemText:
		return &ast.RawTextNode{Pos: token.pos, Text: token.val}
	case itemPrint, itemPrintRaw:
		var path, def, hasDef, _ = splitExpr(token.val)
		return &ast.InterpolationNode{Pos: token.pos, Path: path, Default: def, HasDefault: hasDef, Raw: token.typ == itemPrintRaw}
	case itemEmpty:
		// {{empty}} is only a marker directly inside {{#each}};
		// elsewhere it interpolates the path "empty".
		return &ast.InterpolationNode{Pos: token.pos, Path: "empty"}
	case itemIf:
		return &ast.IfNode{Pos: token.pos, Path: token.val, Not: false, Body: t.itemList(itemIfEnd)}
	case itemUnless:
		return &ast.IfNode{Pos: token.pos, Path: token.val, Not: true, Body: t.itemList(itemUnlessEnd)}
	case itemEach:
		return t.parseEach(token)
	case itemPartial:
		return &ast.PartialNode{Pos: token.pos, Name: token.val}
	case itemIfEnd, itemUnlessEnd, itemEachEnd:
		t.unexpected(token, "input (no matching open tag)")
	case itemEOF:
		t.errorf("unexpected EOF (unclosed block)")
	case itemError:
		t.errorf("lexical error: %s", token.val)
	default:
		t.unexpected(token, "input")
	}
	panic("unreachable")
}

// "#each" has just been read.
func (t *tree) parseEach(token item) ast.Node {
	var body = t.itemList(itemEmpty, itemEachEnd)
	var empty *ast.ListNode
	t.backup()
	if t.next().typ == itemEmpty {
		empty = t.itemList(itemEachEnd)
	}
	return &ast.EachNode{Pos: token.pos, Path: token.val, Body: body, Empty: empty}
}

// next returns the next token.
func (t *tree) next() item {
	if t.peekCount > 0 {
		t.peekCount--
	} else {
		t.token[0] = t.lex.nextItem()
	}
	return t.token[t.peekCount]
}

// backup backs the input stream up one token.
func (t *tree) backup() {
	t.peekCount++
}

// recover is the handler that turns panics into returns from the top level
// of Parse.
func (t *tree) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	t.lex = nil
	*errp = e.(error)
}

// unexpected complains about the token and terminates processing.
func (t *tree) unexpected(token item, context string) {
	t.errorf("unexpected %s in %s", token, context)
}

// errorf formats the error and terminates processing.
func (t *tree) errorf(format string, args ...interface{}) {
	// get current token (taking account of backups)
	var tok = t.token[0]
	if t.peekCount > 0 {
		tok = t.token[t.peekCount-1]
	}
	t.root = nil
	format = fmt.Sprintf("template %s:%d:%d: %s", t.name,
		t.lex.lineNumber(tok.pos), t.lex.columnNumber(tok.pos), format)
	panic(fmt.Errorf(format, args...))
}

func isOneOf(tocheck itemType, against []itemType) bool {
	for _, x := range against {
		if tocheck == x {
			return true
		}
	}
	return false
}
