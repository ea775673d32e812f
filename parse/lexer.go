package parse

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dkeller/brace/ast"
)

// Lexer design from text/template

// Tokens ---------------------------------------------------------------------

// item represents a token returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos ast.Pos  // The starting position, in bytes, of this item in the input string.
	val string   // The value of this item: literal text, a path, or a tag expression.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case len(i.val) > 20:
		return fmt.Sprintf("%.20q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lexical items.
type itemType int

// All items.
const (
	itemInvalid  itemType = iota // not used
	itemEOF                      // EOF
	itemError                    // error occurred; value is text of error
	itemText                     // plain text
	itemPrint                    // {{ path }}; value is the tag expression
	itemPrintRaw                 // {{{ path }}}; value is the tag expression
	itemIf                       // {{#if path}}; value is the path
	itemUnless                   // {{#unless path}}; value is the path
	itemEach                     // {{#each path}}; value is the path
	itemEmpty                    // {{empty}}
	itemIfEnd                    // {{/if}}
	itemUnlessEnd                // {{/unless}}
	itemEachEnd                  // {{/each}}
	itemPartial                  // {{> name}}; value is the trimmed name
)

func (t itemType) String() string {
	var r, ok = map[itemType]string{
		itemEOF:       "<eof>",
		itemError:     "<error>",
		itemText:      "<text>",
		itemPrint:     "{{...}}",
		itemPrintRaw:  "{{{...}}}",
		itemIf:        "{{#if}}",
		itemUnless:    "{{#unless}}",
		itemEach:      "{{#each}}",
		itemEmpty:     "{{empty}}",
		itemIfEnd:     "{{/if}}",
		itemUnlessEnd: "{{/unless}}",
		itemEachEnd:   "{{/each}}",
		itemPartial:   "{{> }}",
	}[t]
	if ok {
		return r
	}
	return fmt.Sprintf("item(%d)", int(t))
}

// Lexer ----------------------------------------------------------------------

const leftDelim = "{{"

// stateFn represents the state of the lexer as a function that returns the
// next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the lexical scanning.
//
// Based on the lexer from the "text/template" package.
// See http://www.youtube.com/watch?v=HxaD_trXwRE
type lexer struct {
	name  string    // the name of the input; used only during errors.
	input string    // the string being scanned.
	state stateFn   // the next lexing function to enter.
	pos   ast.Pos   // current position in the input.
	start ast.Pos   // start position of the pending literal text.
	items chan item // channel of scanned items.
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	return <-l.items
}

// lex creates a new scanner for the input string.
func lex(name, input string) *lexer {
	l := &lexer{
		name:  name,
		input: input,
		items: make(chan item),
		state: lexText,
	}
	go l.run()
	return l
}

// run runs the state machine for the lexer.
func (l *lexer) run() {
	for l.state != nil {
		l.state = l.state(l)
	}
	close(l.items)
}

// emitText passes any pending literal text back to the client.
func (l *lexer) emitText() {
	if l.pos > l.start {
		l.items <- item{itemText, l.start, l.input[l.start:l.pos]}
		l.start = l.pos
	}
}

// lineNumber reports which line the given position is on.
func (l *lexer) lineNumber(pos ast.Pos) int {
	return 1 + strings.Count(l.input[:pos], "\n")
}

// columnNumber reports which column in the current line the position is on.
func (l *lexer) columnNumber(pos ast.Pos) int {
	n := strings.LastIndex(l.input[:pos], "\n")
	if n == -1 {
		n = 0
	}
	return int(pos) - n
}

// State functions ------------------------------------------------------------

// lexText scans the input for directive tags, accumulating everything else
// as literal text.  A brace sequence that does not form a well-formed
// directive is literal text too: template authors may write literal braces
// without escaping them.
func lexText(l *lexer) stateFn {
	for {
		var i = strings.Index(l.input[l.pos:], leftDelim)
		if i < 0 {
			l.pos = ast.Pos(len(l.input))
			break
		}
		l.pos += ast.Pos(i)
		var typ, val, width, ok = scanTag(l.input[l.pos:])
		if !ok {
			// Not a directive: the leading brace is literal.
			// Rescan from the next byte.
			l.pos++
			continue
		}
		l.emitText()
		l.items <- item{typ, l.pos, val}
		l.pos += ast.Pos(width)
		l.start = l.pos
	}
	l.emitText()
	l.items <- item{itemEOF, l.pos, ""}
	return nil
}

// scanTag attempts to read one directive at the start of rest, which begins
// with "{{".  It returns the token type, its value, and the byte width of
// the whole tag, or ok=false if rest does not begin with a well-formed
// directive.
func scanTag(rest string) (typ itemType, val string, width int, ok bool) {
	if strings.HasPrefix(rest, "{{{") {
		var end = strings.Index(rest[3:], "}}}")
		if end < 0 {
			return
		}
		var inner = rest[3 : 3+end]
		if _, _, _, exprOk := splitExpr(inner); !exprOk {
			return
		}
		return itemPrintRaw, strings.TrimSpace(inner), end + 6, true
	}

	var end = strings.Index(rest[2:], "}}")
	if end < 0 {
		return
	}
	var inner = rest[2 : 2+end]
	width = end + 4

	switch {
	case inner == "empty":
		return itemEmpty, "", width, true
	case inner == "/if":
		return itemIfEnd, "", width, true
	case inner == "/unless":
		return itemUnlessEnd, "", width, true
	case inner == "/each":
		return itemEachEnd, "", width, true
	case strings.HasPrefix(inner, "#if"):
		return scanBlockOpen(itemIf, inner[len("#if"):], width)
	case strings.HasPrefix(inner, "#unless"):
		return scanBlockOpen(itemUnless, inner[len("#unless"):], width)
	case strings.HasPrefix(inner, "#each"):
		return scanBlockOpen(itemEach, inner[len("#each"):], width)
	case strings.HasPrefix(inner, ">"):
		var name = strings.TrimSpace(inner[1:])
		if name == "" {
			return 0, "", 0, false
		}
		return itemPartial, name, width, true
	default:
		if _, _, _, exprOk := splitExpr(inner); !exprOk {
			return 0, "", 0, false
		}
		return itemPrint, strings.TrimSpace(inner), width, true
	}
}

// scanBlockOpen validates the argument of a block opening tag: at least one
// space, then a path.
func scanBlockOpen(typ itemType, arg string, width int) (itemType, string, int, bool) {
	if arg == "" || (arg[0] != ' ' && arg[0] != '\t') {
		return 0, "", 0, false
	}
	var path = strings.TrimSpace(arg)
	if !validPath(path) {
		return 0, "", 0, false
	}
	return typ, path, width, true
}

// splitExpr splits a tag expression into its path and optional default
// literal, e.g. `user.name || "anon"`.  The literal may be single or double
// quoted and may not contain its own quote character.
func splitExpr(expr string) (path, def string, hasDef, ok bool) {
	path = strings.TrimSpace(expr)
	if i := strings.Index(path, "||"); i >= 0 {
		var lit = strings.TrimSpace(path[i+2:])
		path = strings.TrimSpace(path[:i])
		if len(lit) < 2 || (lit[0] != '"' && lit[0] != '\'') || lit[len(lit)-1] != lit[0] {
			return "", "", false, false
		}
		def = lit[1 : len(lit)-1]
		if strings.IndexByte(def, lit[0]) >= 0 {
			return "", "", false, false
		}
		hasDef = true
	}
	if !validPath(path) {
		return "", "", false, false
	}
	return path, def, hasDef, true
}

// validPath reports whether s is a non-empty dotted path of word characters,
// dots, and the loop-local @ marker.
func validPath(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r == '.' || r == '@' || r == '_':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
