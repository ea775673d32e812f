/*
Package brace is a micro-templating engine.  It expands HTML-like text
containing embedded directives against a tree-shaped binding context,
producing a plain string.

The directive grammar:

	{{ path }}                     escaped interpolation
	{{ path || "literal" }}        escaped interpolation with default
	{{{ path }}}                   raw interpolation (no HTML escaping)
	{{#if path}} ... {{/if}}       conditional
	{{#unless path}} ... {{/unless}}
	{{#each path}} ... {{empty}} ... {{/each}}
	{{> name}}                     partial inclusion

Paths are dotted lookups into the binding context; resolution is
null-propagating, so a missing or null intermediate value yields empty text
rather than an error.  Within {{#each}} bodies, the identifiers this,
@index (zero-based), and @order (one-based) refer to the current
iteration, and bare names resolve against the current item before falling
through to the enclosing context.

Basic usage:

	engine := brace.New()
	engine.RegisterPartial("greet", "Hi {{ name }}")
	out, err := engine.RenderString("<p>{{> greet}}</p>", map[string]interface{}{
		"name": "Lee",
	})

File-based templates go through a cache keyed by each file's modification
fingerprint, so an unchanged file is read from storage once:

	engine := brace.New(brace.WithBaseDir("views"))
	out, err := engine.RenderFile("index.html", data)

Escaped interpolation HTML-escapes the resolved value; triple braces are
the template author's explicit opt-out for trusted markup.  Missing binding
paths and unregistered partials render as empty text (unregistered partials
additionally log a warning); unbounded partial recursion is cut off at a
configurable depth and fails the render.
*/
package brace
