package lmarkdown

// Token is one element of a parsed document. The set of implementations is
// closed so consumers can type-switch exhaustively; pages store their token
// sequence opaquely and renderers match on every variant.
type Token interface {
	token()
}

// Heading is a block heading of the given depth (1-6).
type Heading struct {
	Depth  int
	Tokens []Token
}

// Paragraph is a block of inline tokens separated from its neighbors by
// blank lines.
type Paragraph struct {
	Tokens []Token
}

// CodeBlock is a fenced code block with an optional language tag.
type CodeBlock struct {
	Language string
	Text     string
}

// Comment is an HTML comment. Renderers drop it; it is kept in the token
// stream so source round-trips stay inspectable.
type Comment struct {
	Text string
}

// Text is a literal inline run.
type Text struct {
	Text string
}

// Bold is an inline **strong** span.
type Bold struct {
	Text string
}

// Italic is an inline *emphasis* span.
type Italic struct {
	Text string
}

// Code is an inline `code` span.
type Code struct {
	Text string
}

// Link is an inline [text](href) link.
type Link struct {
	Text string
	Href string
}

func (Heading) token()   {}
func (Paragraph) token() {}
func (CodeBlock) token() {}
func (Comment) token()   {}
func (Text) token()      {}
func (Bold) token()      {}
func (Italic) token()    {}
func (Code) token()      {}
func (Link) token()      {}
