// Package lmarkdown tokenizes the markdown dialect sitegen pages are written
// in. It produces an ordered, finite token sequence from any byte source; the
// site tree stores that sequence opaquely inside page nodes.
package lmarkdown

import (
	"errors"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/charreader"
	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Parse tokenizes a document from src.
func Parse(src io.Reader) ([]Token, error) {
	r := charreader.New(src)
	tokens := []Token{}

	for {
		c, err := r.PeekByte()
		if err != nil {
			if errors.Is(err, charreader.ErrUnexpectedEOF) {
				return tokens, nil
			}
			return nil, err
		}

		switch {
		case c == '\n' || c == '\r':
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
		case c == '#':
			tok, err := parseHeading(r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case c == '<' && peekIs(r, "<!--"):
			tok, err := parseComment(r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case c == '`' && peekIs(r, "```"):
			tok, err := parseCodeBlock(r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			tok, err := parseParagraph(r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
}

// ParseFile opens and tokenizes a document from disk.
func ParseFile(path string) ([]Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryFileSystem, "failed to open document").
			WithContext("path", path).
			Build()
	}
	defer f.Close()

	tokens, err := Parse(f)
	if err != nil {
		return nil, sgerrors.Wrap(err, sgerrors.CategoryParse, "failed to parse document").
			WithContext("path", path).
			Build()
	}
	return tokens, nil
}

// peekIs reports whether the next bytes equal s, without consuming.
func peekIs(r *charreader.Reader, s string) bool {
	b, err := r.Peek(len(s))
	return err == nil && string(b) == s
}

// readLine consumes up to and including the next newline and returns the line
// without it. End of input terminates the line instead of failing, so files
// without a trailing newline keep their last line.
func readLine(r *charreader.Reader) (string, error) {
	var line []byte
	for {
		c, err := r.PeekByte()
		if err != nil {
			if errors.Is(err, charreader.ErrUnexpectedEOF) {
				return string(line), nil
			}
			return "", err
		}
		if _, err := r.ReadByte(); err != nil {
			return "", err
		}
		if c == '\n' {
			return string(line), nil
		}
		if c != '\r' {
			line = append(line, c)
		}
	}
}

func parseHeading(r *charreader.Reader) (Token, error) {
	depth := 0
	for {
		c, err := r.PeekByte()
		if err != nil || c != '#' {
			break
		}
		if _, err := r.ReadByte(); err != nil {
			return nil, err
		}
		depth++
	}
	if depth > 6 {
		depth = 6
	}
	if c, err := r.PeekByte(); err == nil && (c == ' ' || c == '\t') {
		if _, err := r.ReadByte(); err != nil {
			return nil, err
		}
	}
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	inline, err := parseInline(line)
	if err != nil {
		return nil, err
	}
	return Heading{Depth: depth, Tokens: inline}, nil
}

func parseComment(r *charreader.Reader) (Token, error) {
	if _, err := r.Read(len("<!--")); err != nil {
		return nil, err
	}
	var text []byte
	for {
		if peekIs(r, "-->") {
			if _, err := r.Read(3); err != nil {
				return nil, err
			}
			return Comment{Text: strings.TrimSpace(string(text))}, nil
		}
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, charreader.ErrUnexpectedEOF) {
				return nil, sgerrors.New(sgerrors.CategoryParse, "unterminated comment").Build()
			}
			return nil, err
		}
		text = append(text, c)
	}
}

func parseCodeBlock(r *charreader.Reader) (Token, error) {
	if _, err := r.Read(3); err != nil {
		return nil, err
	}
	lang, err := readLine(r)
	if err != nil {
		return nil, err
	}
	var lines []string
	for {
		c, err := r.PeekByte()
		if err != nil {
			if errors.Is(err, charreader.ErrUnexpectedEOF) {
				return nil, sgerrors.New(sgerrors.CategoryParse, "unterminated code block").Build()
			}
			return nil, err
		}
		if c == '`' && peekIs(r, "```") {
			if _, err := r.Read(3); err != nil {
				return nil, err
			}
			// Trailing newline of the closing fence line, if any.
			if nc, err := r.PeekByte(); err == nil && nc == '\n' {
				if _, err := r.ReadByte(); err != nil {
					return nil, err
				}
			}
			break
		}
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	text := strings.Join(lines, "\n")
	if len(lines) > 0 {
		text += "\n"
	}
	return CodeBlock{Language: strings.TrimSpace(lang), Text: text}, nil
}

func parseParagraph(r *charreader.Reader) (Token, error) {
	var lines []string
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)

		c, err := r.PeekByte()
		if err != nil {
			break
		}
		// A new block construct ends the paragraph.
		if c == '\n' || c == '#' || peekIs(r, "```") || peekIs(r, "<!--") {
			break
		}
	}
	inline, err := parseInline(strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	return Paragraph{Tokens: inline}, nil
}

// parseInline tokenizes inline constructs from an in-memory source. It runs
// through its own charreader so inline parsing uses the same look-ahead
// machinery as the block parser.
func parseInline(s string) ([]Token, error) {
	r := charreader.New(strings.NewReader(s))
	var tokens []Token
	var text []byte

	flush := func() {
		if len(text) > 0 {
			tokens = append(tokens, Text{Text: string(text)})
			text = nil
		}
	}

	for {
		c, err := r.PeekByte()
		if err != nil {
			if errors.Is(err, charreader.ErrUnexpectedEOF) {
				flush()
				return tokens, nil
			}
			return nil, err
		}

		switch c {
		case '[':
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
			// ReadWhile consumes the closing bracket for us.
			label, err := r.ReadWhile(func(b byte) bool { return b != ']' })
			if err != nil {
				return nil, unterminated("link", err)
			}
			open, err := r.ReadByte()
			if err != nil || open != '(' {
				return nil, sgerrors.New(sgerrors.CategoryParse, "link is missing a destination").
					WithContext("text", label).
					Build()
			}
			href, err := r.ReadWhile(func(b byte) bool { return b != ')' })
			if err != nil {
				return nil, unterminated("link destination", err)
			}
			flush()
			tokens = append(tokens, Link{Text: label, Href: href})
		case '*':
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
			next, err := r.PeekByte()
			if err != nil {
				// Trailing lone asterisk stays literal.
				text = append(text, '*')
				continue
			}
			if next == '*' {
				if _, err := r.ReadByte(); err != nil {
					return nil, err
				}
				content, err := r.ReadWhile(func(b byte) bool { return b != '*' })
				if err != nil {
					return nil, unterminated("bold span", err)
				}
				if closing, err := r.ReadByte(); err != nil || closing != '*' {
					return nil, sgerrors.New(sgerrors.CategoryParse, "unterminated bold span").Build()
				}
				flush()
				tokens = append(tokens, Bold{Text: content})
			} else {
				content, err := r.ReadWhile(func(b byte) bool { return b != '*' })
				if err != nil {
					return nil, unterminated("italic span", err)
				}
				flush()
				tokens = append(tokens, Italic{Text: content})
			}
		case '`':
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
			content, err := r.ReadWhile(func(b byte) bool { return b != '`' })
			if err != nil {
				return nil, unterminated("code span", err)
			}
			flush()
			tokens = append(tokens, Code{Text: content})
		default:
			if _, err := r.ReadByte(); err != nil {
				return nil, err
			}
			text = append(text, c)
		}
	}
}

func unterminated(what string, cause error) error {
	if !errors.Is(cause, charreader.ErrUnexpectedEOF) {
		return cause
	}
	return sgerrors.New(sgerrors.CategoryParse, "unterminated "+what).Build()
}
