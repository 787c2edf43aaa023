// Package linkcheck verifies that links resolve: on the source side that
// every local markdown link points at an existing file, and on the site side
// that internal hrefs in generated HTML resolve inside the output directory.
package linkcheck

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Issue is one broken link found during a check.
type Issue struct {
	File   string // file containing the link
	Link   string // the link as written
	Reason string
}

// ExtractSourceLinks parses a markdown body with goldmark and returns every
// link and image destination in document order. Goldmark is deliberately used
// here instead of the site tokenizer: the check should catch links the
// stricter site dialect would reject too.
func ExtractSourceLinks(body []byte) []string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var dests []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			dests = append(dests, string(node.URL(body)))
		case *gmast.Image:
			dests = append(dests, string(node.Destination))
		case *gmast.Link:
			dests = append(dests, string(node.Destination))
		}
		return gmast.WalkContinue, nil
	})
	return dests
}

// CheckSources follows local markdown links from the index document and
// reports every local link whose target does not exist. Issues are sorted by
// file then link so output is stable.
func CheckSources(indexPath string) ([]Issue, error) {
	indexPath = filepath.Clean(indexPath)
	if _, err := os.Stat(indexPath); err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "index document not found").
			WithContext("path", indexPath).
			Build()
	}

	var issues []Issue
	visited := map[string]bool{}
	queue := []string{indexPath}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if visited[file] {
			continue
		}
		visited[file] = true

		body, err := os.ReadFile(file)
		if err != nil {
			return nil, sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to read document").
				WithContext("path", file).
				Build()
		}

		for _, dest := range ExtractSourceLinks(body) {
			local, ok := localDestination(dest)
			if !ok {
				continue
			}
			target := filepath.Clean(filepath.Join(filepath.Dir(file), local))
			if _, err := os.Stat(target); err != nil {
				issues = append(issues, Issue{File: file, Link: dest, Reason: "target does not exist"})
				continue
			}
			if strings.EqualFold(filepath.Ext(target), ".md") {
				queue = append(queue, target)
			}
		}
	}

	sortIssues(issues)
	return issues, nil
}

// localDestination strips fragments/queries and reports whether the
// destination points into the local tree.
func localDestination(dest string) (string, bool) {
	if i := strings.IndexAny(dest, "#?"); i >= 0 {
		dest = dest[:i]
	}
	if dest == "" ||
		strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "//") ||
		strings.HasPrefix(dest, "mailto:") ||
		strings.HasPrefix(dest, "tel:") {
		return "", false
	}
	return dest, true
}

func sortIssues(issues []Issue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Link < issues[j].Link
	})
}
