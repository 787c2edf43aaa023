package linkcheck

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// ExtractHTMLRefs parses an HTML document and returns every href/src
// reference found on a, link, img and script elements.
func ExtractHTMLRefs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryValidation, "failed to parse HTML").Build()
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			attr := ""
			switch n.Data {
			case "a", "link":
				attr = "href"
			case "img", "script":
				attr = "src"
			}
			if attr != "" {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						refs = append(refs, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// CheckSite walks every .html file under outputDir and reports internal
// references that do not resolve to a file or directory inside the output.
// A reference to a directory counts as resolved when the directory holds an
// index.html.
func CheckSite(outputDir string) ([]Issue, error) {
	var issues []Issue

	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		refs, parseErr := ExtractHTMLRefs(f)
		_ = f.Close()
		if parseErr != nil {
			return parseErr
		}

		for _, ref := range refs {
			local, ok := localDestination(ref)
			if !ok {
				continue
			}
			var target string
			if strings.HasPrefix(local, "/") {
				target = filepath.Join(outputDir, filepath.FromSlash(local))
			} else {
				target = filepath.Join(filepath.Dir(path), filepath.FromSlash(local))
			}
			if !resolves(target) {
				issues = append(issues, Issue{File: path, Link: ref, Reason: "target missing in output"})
			}
		}
		return nil
	})
	if err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to walk output directory").
			WithContext("path", outputDir).
			Build()
	}

	sortIssues(issues)
	return issues, nil
}

func resolves(target string) bool {
	info, err := os.Stat(target)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	_, err = os.Stat(filepath.Join(target, "index.html"))
	return err == nil
}
