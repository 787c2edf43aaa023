// Package stylesheet merges stylesheet sources into a single in-memory value.
// Sources are byte-concatenated in the order they are appended; there is no
// minification, deduplication, or validation.
package stylesheet

import (
	_ "embed"
	"os"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

//go:embed default.css
var defaultCSS []byte

// Stylesheet is an ordered concatenation of stylesheet sources.
type Stylesheet struct {
	parts [][]byte
}

// New returns an empty stylesheet.
func New() *Stylesheet {
	return &Stylesheet{}
}

// Default returns a stylesheet seeded with the built-in default sheet.
func Default() *Stylesheet {
	s := New()
	s.AppendContent(defaultCSS)
	return s
}

// Append reads the file at path and appends its content.
func (s *Stylesheet) Append(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to read stylesheet").
			WithContext("path", path).
			Build()
	}
	s.AppendContent(data)
	return nil
}

// AppendContent appends raw stylesheet bytes.
func (s *Stylesheet) AppendContent(content []byte) {
	part := make([]byte, len(content))
	copy(part, content)
	s.parts = append(s.parts, part)
}

// Bytes returns the merged stylesheet, the exact concatenation of every
// appended part with nothing inserted between them.
func (s *Stylesheet) Bytes() []byte {
	var out []byte
	for _, p := range s.parts {
		out = append(out, p...)
	}
	return out
}

// String returns the merged stylesheet as text.
func (s *Stylesheet) String() string {
	return string(s.Bytes())
}
