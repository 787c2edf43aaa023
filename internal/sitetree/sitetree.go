// Package sitetree models the site as an arena of identity-stable nodes.
//
// Nodes are stored in an append-only slice indexed by integer id; parent and
// child links are ids rather than pointers, which keeps lookups O(1) and
// makes the upward walks for path computation cheap. Ids never change or get
// reused. The parent/child relation always forms a rooted tree: Add is the
// only way in, and it links a fresh id under an existing parent.
package sitetree

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/lmarkdown"
	"git.home.luguber.info/inful/sitegen/internal/stylesheet"
)

// Tree owns all nodes of a site. Built once from the index document plus
// explicit Add calls, then read-only during rendering.
type Tree struct {
	nodes []Node
	root  int
	// pages and resources map a cleaned source path to the node built from
	// it, so a file linked from several places attaches exactly once and the
	// renderer can find where a linked file ended up in the tree.
	pages     map[string]int
	resources map[string]int
}

// FromIndex parses the index document, creates the root page node (named
// after the file stem) and recursively attaches every local document and
// resource it links to.
func FromIndex(indexPath string) (*Tree, error) {
	indexPath = filepath.Clean(indexPath)
	tokens, err := lmarkdown.ParseFile(indexPath)
	if err != nil {
		return nil, err
	}

	t := &Tree{pages: make(map[string]int), resources: make(map[string]int)}
	t.nodes = append(t.nodes, Node{
		Name:    stem(indexPath),
		Parent:  NoParent,
		Content: Page{Tokens: tokens, Source: indexPath},
	})
	t.root = 0
	t.pages[indexPath] = t.root

	if err := t.discover(t.root); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the fixed root id created at construction.
func (t *Tree) Root() int { return t.root }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Add appends node as a child of parentID, assigns it a fresh id and returns
// that id. The node's Parent field is set by Add.
func (t *Tree) Add(node Node, parentID int) (int, error) {
	if !t.valid(parentID) {
		return 0, sgerrors.New(sgerrors.CategoryNotFound, "parent node does not exist").
			WithContext("id", parentID).
			Build()
	}
	id := len(t.nodes)
	node.Parent = parentID
	t.nodes = append(t.nodes, node)
	t.nodes[parentID].Children = append(t.nodes[parentID].Children, id)
	switch c := node.Content.(type) {
	case Page:
		if c.Source != "" {
			t.pages[filepath.Clean(c.Source)] = id
		}
	case Resource:
		if c.Source != "" {
			t.resources[filepath.Clean(c.Source)] = id
		}
	}
	return id, nil
}

// AddStylesheet attaches a stylesheet node under parentID and returns its id.
func (t *Tree) AddStylesheet(name string, sheet *stylesheet.Stylesheet, parentID int) (int, error) {
	return t.Add(Node{Name: name, Content: Stylesheet{Sheet: sheet}}, parentID)
}

// Get returns the node for id.
func (t *Tree) Get(id int) (*Node, error) {
	if !t.valid(id) {
		return nil, sgerrors.New(sgerrors.CategoryNotFound, "node does not exist").
			WithContext("id", id).
			Build()
	}
	return &t.nodes[id], nil
}

// PageBySource returns the id of the page parsed from the given source path.
func (t *Tree) PageBySource(source string) (int, bool) {
	id, ok := t.pages[filepath.Clean(source)]
	return id, ok
}

// ResourceBySource returns the id of the resource copied from the given
// source path.
func (t *Tree) ResourceBySource(source string) (int, bool) {
	id, ok := t.resources[filepath.Clean(source)]
	return id, ok
}

// Path returns the slash-separated filesystem path for id, built from the
// parent chain in root-to-leaf order. The root contributes no segment, so
// Path(root) is "".
func (t *Tree) Path(id int) (string, error) {
	chain, err := t.ancestry(id)
	if err != nil {
		return "", err
	}
	segments := make([]string, 0, len(chain))
	for _, n := range chain[1:] { // skip root
		segments = append(segments, t.nodes[n].Name)
	}
	return path.Join(segments...), nil
}

// RelPath computes a relative path usable inside from's output location to
// reach to's location: one ".." per step from from up to the lowest common
// ancestor, then the segments from the common ancestor down to to.
func (t *Tree) RelPath(from, to int) (string, error) {
	fromChain, err := t.ancestry(from)
	if err != nil {
		return "", err
	}
	toChain, err := t.ancestry(to)
	if err != nil {
		return "", err
	}

	common := 0
	for common < len(fromChain) && common < len(toChain) && fromChain[common] == toChain[common] {
		common++
	}

	ups := len(fromChain) - common
	var b strings.Builder
	for range ups {
		b.WriteString("../")
	}
	downs := make([]string, 0, len(toChain)-common)
	for _, n := range toChain[common:] {
		downs = append(downs, t.nodes[n].Name)
	}
	return b.String() + path.Join(downs...), nil
}

// Walk visits every node depth-first starting at root, using a stack that
// pushes all children and pops the most recently pushed, so the last child is
// visited first. On-disk output is independent of this order; only log
// ordering varies. The first error aborts the walk.
func (t *Tree) Walk(fn func(id int, node *Node) error) error {
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.nodes[id]
		stack = append(stack, node.Children...)
		if err := fn(id, node); err != nil {
			return err
		}
	}
	return nil
}

// String renders an indented dump of the tree for debug logging.
func (t *Tree) String() string {
	var b strings.Builder
	var dump func(id, depth int)
	dump = func(id, depth int) {
		n := t.nodes[id]
		fmt.Fprintf(&b, "%s%s (%s)\n", strings.Repeat("  ", depth), n.Name, kindOf(n.Content))
		for _, c := range n.Children {
			dump(c, depth+1)
		}
	}
	dump(t.root, 0)
	return strings.TrimRight(b.String(), "\n")
}

func kindOf(c Content) string {
	switch c.(type) {
	case Page:
		return "page"
	case Resource:
		return "resource"
	case Stylesheet:
		return "stylesheet"
	case Folder:
		return "folder"
	default:
		return "unknown"
	}
}

func (t *Tree) valid(id int) bool {
	return id >= 0 && id < len(t.nodes)
}

// ancestry returns the id chain from root down to id, inclusive.
func (t *Tree) ancestry(id int) ([]int, error) {
	if !t.valid(id) {
		return nil, sgerrors.New(sgerrors.CategoryNotFound, "node does not exist").
			WithContext("id", id).
			Build()
	}
	var chain []int
	for cur := id; cur != NoParent; cur = t.nodes[cur].Parent {
		chain = append(chain, cur)
	}
	// Reverse to root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
