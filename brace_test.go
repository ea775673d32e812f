package brace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dkeller/brace/loader"
)

func TestRenderString(t *testing.T) {
	engine := New()
	out, err := engine.RenderString("Hello {{ name }}!", map[string]interface{}{"name": "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Lee!", out)
}

func TestRenderStringNilBinding(t *testing.T) {
	engine := New()
	out, err := engine.RenderString("[{{ anything }}]", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestRenderStringStructBinding(t *testing.T) {
	engine := New()
	out, err := engine.RenderString("{{ Name }}", struct{ Name string }{"Kim"})
	require.NoError(t, err)
	assert.Equal(t, "Kim", out)
}

func TestRenderStringBadBinding(t *testing.T) {
	engine := New()
	_, err := engine.RenderString("{{ x }}", "not a map")
	assert.Error(t, err)
}

func TestRenderStringParseError(t *testing.T) {
	engine := New()
	_, err := engine.RenderString("{{#each items}}unterminated", nil)
	assert.Error(t, err)
}

func TestPartials(t *testing.T) {
	engine := New()
	require.NoError(t, engine.RegisterPartial("greet", "Hi {{ name }}"))
	out, err := engine.RenderString("<p>{{> greet}}</p>", map[string]interface{}{"name": "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi Lee</p>", out)
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"),
		[]byte("<h1>{{ title }}</h1>"), 0o644))

	engine := New(WithBaseDir(dir))
	out, err := engine.RenderFile("page.html", map[string]interface{}{"title": "A & B"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>A &amp; B</h1>", out)
}

func TestRenderFileMissing(t *testing.T) {
	engine := New(WithBaseDir(t.TempDir()))
	_, err := engine.RenderFile("nope.html", nil)
	assert.Error(t, err, "an unreadable file must fail the render")
}

func TestRenderFileCacheInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	engine := New(WithBaseDir(dir))
	out, err := engine.RenderFile("page.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	// the cached copy may be served until the entry is invalidated
	require.NoError(t, os.WriteFile(path, []byte("three"), 0o644))
	require.NoError(t, engine.Invalidate("page.html"))
	out, err = engine.RenderFile("page.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "three", out)
}

func TestRenderSections(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "header.html"),
		[]byte("<header>{{ site }}</header>"), 0o644))

	engine := New(WithBaseDir(dir))
	out, err := engine.RenderSections([]Section{
		{File: "header.html"},
		{Source: "<main>{{ body }}</main>"},
		{Source: "<aside>{{ site }}</aside>", Data: map[string]interface{}{"site": "other"}},
	}, map[string]interface{}{"site": "mine", "body": "text"})
	require.NoError(t, err)
	assert.Equal(t,
		"<header>mine</header><main>text</main><aside>other</aside>", out)
}

func TestRenderSectionsEmptySection(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	engine := New(WithLogger(zap.New(core)))
	out, err := engine.RenderSections([]Section{
		{Source: "a"},
		{}, // no template: logged, contributes nothing
		{Source: "b"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)
	assert.Equal(t, 1, logs.FilterMessage("section has no template").Len())
}

func TestRenderSectionsFileError(t *testing.T) {
	engine := New(WithBaseDir(t.TempDir()))
	_, err := engine.RenderSections([]Section{{File: "missing.html"}}, nil)
	assert.Error(t, err)
}

func TestMaxPartialDepthOption(t *testing.T) {
	engine := New(WithMaxPartialDepth(3))
	require.NoError(t, engine.RegisterPartial("loop", "{{> loop}}"))
	_, err := engine.RenderString("{{> loop}}", nil)
	assert.ErrorContains(t, err, "partial recursion limit exceeded")
}

func TestCacheDisabledOption(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	engine := New(WithBaseDir(dir), WithCacheDisabled())
	out, err := engine.RenderFile("page.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "one", out)

	// without a cache, the rewrite is visible immediately
	require.NoError(t, os.WriteFile(path, []byte("two!"), 0o644))
	out, err = engine.RenderFile("page.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "two!", out)
}

func TestInjectedStorage(t *testing.T) {
	var reads int
	engine := New(
		WithReadFile(func(path string) ([]byte, error) {
			reads++
			return []byte("stored {{ v }}"), nil
		}),
		WithStat(func(path string) (loader.Fingerprint, error) {
			return loader.Fingerprint{Size: 14}, nil
		}),
	)
	for i := 0; i < 3; i++ {
		out, err := engine.RenderFile("anything.html", map[string]interface{}{"v": "ok"})
		require.NoError(t, err)
		assert.Equal(t, "stored ok", out)
	}
	assert.Equal(t, 1, reads, "constant fingerprint should serve from cache")
}
