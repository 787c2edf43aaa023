package sitetree

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/lmarkdown"
)

// discover walks the token stream of the page with the given id and attaches
// every local link target as a child node: markdown documents become pages
// (recursively discovered), everything else becomes a resource, and
// intermediate path segments become folders. A document linked from several
// places is attached only once.
func (t *Tree) discover(id int) error {
	node := t.nodes[id]
	page, ok := node.Content.(Page)
	if !ok {
		return nil
	}
	baseDir := filepath.Dir(page.Source)

	for _, href := range collectLinks(page.Tokens) {
		local, ok := localHref(href)
		if !ok {
			continue
		}
		source := filepath.Clean(filepath.Join(baseDir, local))
		if _, seen := t.pages[source]; seen {
			continue
		}
		if _, seen := t.resources[source]; seen {
			continue
		}

		parent, err := t.materializeFolders(id, local)
		if err != nil {
			return err
		}

		if strings.EqualFold(filepath.Ext(local), ".md") {
			tokens, err := lmarkdown.ParseFile(source)
			if err != nil {
				return err
			}
			child, err := t.Add(Node{
				Name:    stem(source),
				Content: Page{Tokens: tokens, Source: source},
			}, parent)
			if err != nil {
				return err
			}
			if err := t.discover(child); err != nil {
				return err
			}
		} else {
			name := filepath.Base(local)
			if _, exists := t.childByName(parent, name); !exists {
				if _, err := t.Add(Node{
					Name:    name,
					Content: Resource{Source: source},
				}, parent); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// materializeFolders descends from id through the directory components of the
// href, creating folder nodes as needed, and returns the id the final
// component should attach under. Components that climb out of the page's
// location ("..") contribute no folder.
func (t *Tree) materializeFolders(id int, href string) (int, error) {
	dir := filepath.Dir(href)
	if dir == "." || dir == "/" {
		return id, nil
	}
	parent := id
	for _, comp := range strings.Split(filepath.ToSlash(dir), "/") {
		if comp == "" || comp == "." || comp == ".." {
			continue
		}
		if existing, ok := t.childByName(parent, comp); ok {
			parent = existing
			continue
		}
		created, err := t.Add(Node{Name: comp, Content: Folder{}}, parent)
		if err != nil {
			return 0, err
		}
		parent = created
	}
	return parent, nil
}

func (t *Tree) childByName(id int, name string) (int, bool) {
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Name == name {
			return c, true
		}
	}
	return 0, false
}

// collectLinks extracts link hrefs from a token stream in document order.
func collectLinks(tokens []lmarkdown.Token) []string {
	var hrefs []string
	for _, tok := range tokens {
		switch v := tok.(type) {
		case lmarkdown.Link:
			hrefs = append(hrefs, v.Href)
		case lmarkdown.Heading:
			hrefs = append(hrefs, collectLinks(v.Tokens)...)
		case lmarkdown.Paragraph:
			hrefs = append(hrefs, collectLinks(v.Tokens)...)
		}
	}
	return hrefs
}

// localHref strips fragments and queries from href and reports whether it
// points into the local source tree. Scheme-qualified, protocol-relative,
// mail and pure-fragment links are not local.
func localHref(href string) (string, bool) {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if href == "" {
		return "", false
	}
	if strings.Contains(href, "://") ||
		strings.HasPrefix(href, "//") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return "", false
	}
	return href, true
}
