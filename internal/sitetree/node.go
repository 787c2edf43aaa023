package sitetree

import (
	"git.home.luguber.info/inful/sitegen/internal/lmarkdown"
	"git.home.luguber.info/inful/sitegen/internal/stylesheet"
)

// Content is the closed set of node payloads. Consumers type-switch over all
// four variants; exhaustive matching at every consumption site is what keeps
// the write walk and the renderer honest.
type Content interface {
	content()
}

// Page is a parsed document. KeepName controls whether the page materializes
// as name.html next to its siblings (set) or as name/index.html (unset).
type Page struct {
	Tokens   []lmarkdown.Token
	Source   string
	KeepName bool
}

// Resource is a source file byte-copied verbatim to the node's tree path.
type Resource struct {
	Source string
}

// Stylesheet is a pre-merged stylesheet written as text.
type Stylesheet struct {
	Sheet *stylesheet.Stylesheet
}

// Folder is a pure container; it produces an empty directory.
type Folder struct{}

func (Page) content()       {}
func (Resource) content()   {}
func (Stylesheet) content() {}
func (Folder) content()     {}

// NoParent marks the root's parent slot. Every other node holds a valid id.
const NoParent = -1

// Node is one entry in the site tree: identity comes from its arena index,
// hierarchy from parent/child ids, payload from the content variant.
type Node struct {
	Name     string
	Parent   int
	Children []int
	Content  Content
}
