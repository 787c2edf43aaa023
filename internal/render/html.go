// Package render turns page nodes into HTML documents. It needs the full
// tree to resolve links between nodes (pages linking pages, every page
// linking the merged stylesheet) as relative paths.
package render

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/lmarkdown"
	"git.home.luguber.info/inful/sitegen/internal/sitetree"
)

// Rel enumerates the link relations the renderer emits.
type Rel string

const (
	RelStylesheet Rel = "stylesheet"
	RelIcon       Rel = "icon"
)

// HTMLLink is a <link> tag in the document head.
type HTMLLink struct {
	Rel  Rel
	Href string
}

// Meta is a <meta name content> pair.
type Meta struct {
	Name    string
	Content string
}

// NoFavicon marks the favicon option as absent.
const NoFavicon = -1

// Options carries the per-document render settings.
type Options struct {
	Links    []HTMLLink
	Title    string
	Favicon  int // node id of the favicon resource, or NoFavicon
	Meta     []Meta
	Language string
}

// HTMLRenderer renders page nodes of a tree.
type HTMLRenderer struct {
	tree *sitetree.Tree
}

// NewHTMLRenderer creates a renderer over tree.
func NewHTMLRenderer(tree *sitetree.Tree) *HTMLRenderer {
	return &HTMLRenderer{tree: tree}
}

// Render produces the HTML document for the page node id.
func (r *HTMLRenderer) Render(id int, opts Options) (string, error) {
	node, err := r.tree.Get(id)
	if err != nil {
		return "", err
	}
	page, ok := node.Content.(sitetree.Page)
	if !ok {
		return "", sgerrors.New(sgerrors.CategoryRender, "node is not a page").
			WithContext("id", id).
			WithContext("name", node.Name).
			Build()
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n<head>\n", html.EscapeString(opts.Language))
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(opts.Title))
	for _, m := range opts.Meta {
		fmt.Fprintf(&b, "<meta name=\"%s\" content=\"%s\">\n",
			html.EscapeString(m.Name), html.EscapeString(m.Content))
	}
	for _, l := range opts.Links {
		fmt.Fprintf(&b, "<link rel=\"%s\" href=\"%s\">\n",
			html.EscapeString(string(l.Rel)), html.EscapeString(l.Href))
	}
	if opts.Favicon != NoFavicon {
		href, err := r.tree.RelPath(id, opts.Favicon)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "<link rel=\"icon\" href=\"%s\">\n", html.EscapeString(href))
	}
	b.WriteString("</head>\n<body>\n")

	for _, tok := range page.Tokens {
		if err := r.renderBlock(&b, id, page, tok); err != nil {
			return "", err
		}
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func (r *HTMLRenderer) renderBlock(b *strings.Builder, id int, page sitetree.Page, tok lmarkdown.Token) error {
	switch v := tok.(type) {
	case lmarkdown.Heading:
		inline, err := r.renderInline(id, page, v.Tokens)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "<h%d>%s</h%d>\n", v.Depth, inline, v.Depth)
	case lmarkdown.Paragraph:
		inline, err := r.renderInline(id, page, v.Tokens)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "<p>%s</p>\n", inline)
	case lmarkdown.CodeBlock:
		if v.Language != "" {
			fmt.Fprintf(b, "<pre><code class=\"%s\">%s</code></pre>\n",
				html.EscapeString("language-"+v.Language), html.EscapeString(v.Text))
		} else {
			fmt.Fprintf(b, "<pre><code>%s</code></pre>\n", html.EscapeString(v.Text))
		}
	case lmarkdown.Comment:
		// Source comments carry document metadata; they never reach the output.
	case lmarkdown.Text, lmarkdown.Bold, lmarkdown.Italic, lmarkdown.Code, lmarkdown.Link:
		inline, err := r.renderInline(id, page, []lmarkdown.Token{tok})
		if err != nil {
			return err
		}
		b.WriteString(inline)
	default:
		return sgerrors.New(sgerrors.CategoryRender, "unsupported token").
			WithContext("token", fmt.Sprintf("%T", tok)).
			Build()
	}
	return nil
}

func (r *HTMLRenderer) renderInline(id int, page sitetree.Page, tokens []lmarkdown.Token) (string, error) {
	var b strings.Builder
	for _, tok := range tokens {
		switch v := tok.(type) {
		case lmarkdown.Text:
			b.WriteString(html.EscapeString(v.Text))
		case lmarkdown.Bold:
			fmt.Fprintf(&b, "<strong>%s</strong>", html.EscapeString(v.Text))
		case lmarkdown.Italic:
			fmt.Fprintf(&b, "<em>%s</em>", html.EscapeString(v.Text))
		case lmarkdown.Code:
			fmt.Fprintf(&b, "<code>%s</code>", html.EscapeString(v.Text))
		case lmarkdown.Link:
			href, err := r.resolveHref(id, page, v.Href)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "<a href=\"%s\">%s</a>", html.EscapeString(href), html.EscapeString(v.Text))
		default:
			return "", sgerrors.New(sgerrors.CategoryRender, "unsupported inline token").
				WithContext("token", fmt.Sprintf("%T", tok)).
				Build()
		}
	}
	return b.String(), nil
}

// resolveHref rewrites links to local files so they point at the linked
// node's output location, wherever discovery placed it in the tree. External
// links pass through untouched. A local markdown link whose document never
// made it into the tree is an error; a local resource link the tree does not
// know about passes through.
func (r *HTMLRenderer) resolveHref(id int, page sitetree.Page, href string) (string, error) {
	target, ok := localTarget(page.Source, href)
	if !ok {
		return href, nil
	}
	if strings.EqualFold(filepath.Ext(target), ".md") {
		targetID, ok := r.tree.PageBySource(target)
		if !ok {
			return "", sgerrors.New(sgerrors.CategoryRender, "link points to a document outside the site tree").
				WithContext("href", href).
				WithContext("source", page.Source).
				Build()
		}
		return r.tree.RelPath(id, targetID)
	}
	if targetID, ok := r.tree.ResourceBySource(target); ok {
		return r.tree.RelPath(id, targetID)
	}
	return href, nil
}

// localTarget resolves href against the linking page's source location,
// reporting false for hrefs that do not point into the local source tree.
func localTarget(source, href string) (string, bool) {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if href == "" || strings.Contains(href, "://") ||
		strings.HasPrefix(href, "//") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return "", false
	}
	return filepath.Clean(filepath.Join(filepath.Dir(source), href)), true
}
