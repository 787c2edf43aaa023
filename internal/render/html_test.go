package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/sitetree"
	"git.home.luguber.info/inful/sitegen/internal/stylesheet"
)

// fixtureTree builds a two-page site (home -> blog) in a temp dir.
func fixtureTree(t *testing.T) *sitetree.Tree {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("home.md", "# Welcome\n\nGo to [the blog](./blog.md) or use `sitegen --help`.\n\n"+
		"Symbols like <, > & \"quotes\" get escaped.\n")
	write("blog.md", "# Blog\n\nBack to [home](./home.md).\n")

	tree, err := sitetree.FromIndex(filepath.Join(dir, "home.md"))
	require.NoError(t, err)
	return tree
}

func defaultOptions() Options {
	return Options{
		Title:    "Example site",
		Language: "en",
		Favicon:  NoFavicon,
		Meta:     []Meta{{Name: "description", Content: "test fixture"}},
	}
}

func TestRender_EmitsDocumentSkeleton(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	out, err := r.Render(tree.Root(), defaultOptions())
	require.NoError(t, err)

	require.Contains(t, out, "<!DOCTYPE html>")
	require.Contains(t, out, "<html lang=\"en\">")
	require.Contains(t, out, "<title>Example site</title>")
	require.Contains(t, out, "<meta name=\"description\" content=\"test fixture\">")
	require.Contains(t, out, "<h1>Welcome</h1>")
}

func TestRender_StylesheetLinkFromOptions(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	opts := defaultOptions()
	opts.Links = append(opts.Links, HTMLLink{Rel: RelStylesheet, Href: "main.css"})

	out, err := r.Render(tree.Root(), opts)
	require.NoError(t, err)
	require.Contains(t, out, "<link rel=\"stylesheet\" href=\"main.css\">")
}

func TestRender_RewritesMarkdownLinksToPagePaths(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	out, err := r.Render(tree.Root(), defaultOptions())
	require.NoError(t, err)
	// From the root page, the blog page lives in the blog/ directory.
	require.Contains(t, out, "<a href=\"blog\">the blog</a>")

	blog, ok := tree.PageBySource(mustPageSource(t, tree, tree.Root(), "blog"))
	require.True(t, ok)
	out, err = r.Render(blog, defaultOptions())
	require.NoError(t, err)
	// From blog/index.html, home's index.html is one level up.
	require.Contains(t, out, "<a href=\"../\">home</a>")
}

func TestRender_RewritesResourceLinksToTreeLocations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("home.md", "# Home\n\nThe [logo](shared/logo.png) and [the guide](./docs/guide.md).\n")
	write("docs/guide.md", "# Guide\n\nThe [logo](../shared/logo.png) again.\n")
	write("shared/logo.png", "\x89PNG fake")

	tree, err := sitetree.FromIndex(filepath.Join(dir, "home.md"))
	require.NoError(t, err)
	r := NewHTMLRenderer(tree)

	out, err := r.Render(tree.Root(), defaultOptions())
	require.NoError(t, err)
	require.Contains(t, out, "<a href=\"shared/logo.png\">logo</a>")

	// The nested page reaches the same tree node, two levels up from its
	// own output directory.
	guide, ok := tree.PageBySource(filepath.Join(dir, "docs", "guide.md"))
	require.True(t, ok)
	out, err = r.Render(guide, defaultOptions())
	require.NoError(t, err)
	require.Contains(t, out, "<a href=\"../../shared/logo.png\">logo</a>")
}

func TestRender_MetaAttributesAreHTMLEscaped(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	opts := defaultOptions()
	opts.Meta = []Meta{{Name: "description", Content: `say "hi" & more`}}

	out, err := r.Render(tree.Root(), opts)
	require.NoError(t, err)
	require.Contains(t, out, "<meta name=\"description\" content=\"say &#34;hi&#34; &amp; more\">")
	require.NotContains(t, out, `\"`)
}

func TestRender_EscapesTextAndInlineCode(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	out, err := r.Render(tree.Root(), defaultOptions())
	require.NoError(t, err)
	require.Contains(t, out, "&lt;, &gt; &amp; &#34;quotes&#34;")
	require.Contains(t, out, "<code>sitegen --help</code>")
}

func TestRender_FaviconLinkUsesRelativePath(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	favicon, err := tree.Add(sitetree.Node{
		Name:    "favicon.ico",
		Content: sitetree.Resource{Source: "favicon.ico"},
	}, tree.Root())
	require.NoError(t, err)

	opts := defaultOptions()
	opts.Favicon = favicon

	out, err := r.Render(tree.Root(), opts)
	require.NoError(t, err)
	require.Contains(t, out, "<link rel=\"icon\" href=\"favicon.ico\">")
}

func TestRender_NonPageNode_ReturnsRenderError(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	css, err := tree.AddStylesheet("main.css", stylesheet.Default(), tree.Root())
	require.NoError(t, err)

	_, err = r.Render(css, defaultOptions())
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryRender))
}

func TestRender_UnknownId_ReturnsNotFound(t *testing.T) {
	tree := fixtureTree(t)
	r := NewHTMLRenderer(tree)

	_, err := r.Render(999, defaultOptions())
	require.Error(t, err)
	require.True(t, sgerrors.IsCategory(err, sgerrors.CategoryNotFound))
}

// mustPageSource finds the source path of a named child page.
func mustPageSource(t *testing.T, tree *sitetree.Tree, parent int, name string) string {
	t.Helper()
	p, err := tree.Get(parent)
	require.NoError(t, err)
	for _, c := range p.Children {
		n, err := tree.Get(c)
		require.NoError(t, err)
		if n.Name != name {
			continue
		}
		page, ok := n.Content.(sitetree.Page)
		require.True(t, ok)
		return page.Source
	}
	t.Fatalf("no child page named %q", name)
	return ""
}
