// Package charreader implements the buffered incremental reader that every
// document parser is built on.
//
// The reader wraps any sequential byte source and maintains a look-ahead
// buffer: bytes already pulled from the source but not yet consumed by the
// caller. Peek guarantees look-ahead without consuming; the consuming reads
// drain the buffer first and fall back to the source once it is exhausted.
// The look-ahead buffer is the rollback mechanism: a tokenizer can look
// arbitrarily far ahead to disambiguate multi-byte constructs without any
// explicit un-read support.
package charreader

import (
	"errors"
	"io"
	"unicode/utf8"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// ErrUnexpectedEOF is the sentinel cause carried by end-of-input failures.
// Callers use errors.Is against it to distinguish "ran out of input" from
// other parse failures.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// Reader is a buffered incremental reader over a sequential byte source.
//
// The source is an opaque capability: anything implementing io.Reader works,
// so parsers run uniformly over files, in-memory buffers, and test fixtures.
// A Reader is created once per document and discarded when parsing completes
// or fails. It is not safe for concurrent use.
type Reader struct {
	src io.Reader
	// buf holds the look-ahead bytes. Invariant: these are always the next
	// bytes the source would yield, in order.
	buf []byte
}

// New wraps src in a Reader with an empty look-ahead buffer.
func New(src io.Reader) *Reader {
	return &Reader{src: src}
}

// pull appends up to n more bytes from the source to the look-ahead buffer.
// Hitting end of input is not an error here; callers decide whether the
// resulting buffer is long enough.
func (r *Reader) pull(n int) error {
	if n <= 0 {
		return nil
	}
	tmp := make([]byte, n)
	read, err := io.ReadFull(r.src, tmp)
	r.buf = append(r.buf, tmp[:read]...)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return sgerrors.Wrap(err, sgerrors.CategoryParse, "failed to read from source").Build()
	}
	return nil
}

func eofError(op string, want, have int) error {
	return sgerrors.Wrap(ErrUnexpectedEOF, sgerrors.CategoryParse, "unexpected end of input").
		WithContext("op", op).
		WithContext("want", want).
		WithContext("have", have).
		Build()
}

// Peek returns the next n bytes without consuming them. After a successful
// call the look-ahead buffer holds at least n bytes. The buffer grows
// monotonically: every call pulls up to n additional bytes from the source
// even when the buffer already satisfies the request, so Peek may over-read
// ahead of demand (relevant for streaming sources that block). Peek fails
// with an end-of-input error only when fewer than n bytes remain in total
// between buffer and source.
//
// The returned slice aliases the look-ahead buffer and is only valid until
// the next call on the Reader.
func (r *Reader) Peek(n int) ([]byte, error) {
	if err := r.pull(n); err != nil {
		return nil, err
	}
	if len(r.buf) < n {
		return nil, eofError("peek", n, len(r.buf))
	}
	return r.buf[:n], nil
}

// Read consumes and returns exactly n bytes, drawing first from the
// look-ahead buffer and then from the source. It fails with an end-of-input
// error if fewer than n bytes remain.
func (r *Reader) Read(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	take := n
	if take > len(r.buf) {
		take = len(r.buf)
	}
	out = append(out, r.buf[:take]...)
	r.buf = r.buf[take:]

	if len(out) < n {
		rest := make([]byte, n-len(out))
		read, err := io.ReadFull(r.src, rest)
		out = append(out, rest[:read]...)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, eofError("read", n, len(out))
			}
			return nil, sgerrors.Wrap(err, sgerrors.CategoryParse, "failed to read from source").Build()
		}
	}
	return out, nil
}

// PeekString is Peek with UTF-8 validation. It fails with an encoding error
// when the peeked bytes are not well-formed text.
func (r *Reader) PeekString(n int) (string, error) {
	b, err := r.Peek(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", sgerrors.New(sgerrors.CategoryEncoding, "peeked bytes are not valid UTF-8").Build()
	}
	return string(b), nil
}

// ReadString is Read with UTF-8 validation.
func (r *Reader) ReadString(n int) (string, error) {
	b, err := r.Read(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", sgerrors.New(sgerrors.CategoryEncoding, "read bytes are not valid UTF-8").Build()
	}
	return string(b), nil
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	b, err := r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadByte consumes and returns the next byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadWhile consumes one byte at a time while pred holds, accumulating the
// consumed bytes into the result. The terminating byte (the first for which
// pred is false) is itself consumed and discarded: it is not part of the
// result and not pushed back. Token boundaries downstream depend on this
// exact semantic. ReadWhile fails if the source is exhausted before a
// terminating byte is found.
func (r *Reader) ReadWhile(pred func(byte) bool) (string, error) {
	var out []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if !pred(c) {
			return string(out), nil
		}
		out = append(out, c)
	}
}

// Buffered returns the current number of look-ahead bytes. Exposed for tests
// that assert buffer/consumption consistency.
func (r *Reader) Buffered() int { return len(r.buf) }
