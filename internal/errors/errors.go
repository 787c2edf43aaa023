// Package errors provides classified errors for sitegen.
//
// Every failure surfaced by the build carries one of a closed set of
// categories so that callers (and the CLI) can route on the kind of failure
// without string matching. The first error anywhere aborts the render; no
// operation retries.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies an error by the subsystem and kind of failure.
type Category string

const (
	// CategoryParse covers malformed document syntax and tokenizer failures.
	CategoryParse Category = "parse"
	// CategoryEncoding covers invalid text encountered while reading a document.
	CategoryEncoding Category = "encoding"
	// CategoryNotFound covers lookups of node ids that do not exist in the tree.
	CategoryNotFound Category = "not_found"
	// CategoryRender covers failures reported by the HTML renderer.
	CategoryRender Category = "render"
	// CategoryFileSystem covers failed filesystem operations.
	CategoryFileSystem Category = "filesystem"
	// CategoryConfig covers unreadable or invalid configuration files.
	CategoryConfig Category = "config"
	// CategoryValidation covers user input that fails validation.
	CategoryValidation Category = "validation"
)

// Context carries structured key/value details attached to an error.
type Context map[string]any

// Error is a classified error with an optional cause and structured context.
type Error struct {
	category Category
	message  string
	cause    error
	context  Context
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.category, e.message)
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.context[k])
		}
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Category returns the error category.
func (e *Error) Category() Category { return e.category }

// Message returns the message without category or context decoration.
func (e *Error) Message() string { return e.message }

// Context returns the structured context attached to the error.
func (e *Error) Context() Context { return e.context }

// Builder assembles a classified error fluently.
type Builder struct {
	err *Error
}

// New creates a builder for a fresh classified error.
func New(category Category, message string) *Builder {
	return &Builder{err: &Error{category: category, message: message}}
}

// Wrap creates a builder for a classified error wrapping a cause.
func Wrap(cause error, category Category, message string) *Builder {
	return &Builder{err: &Error{category: category, message: message, cause: cause}}
}

// WithContext attaches a key/value detail.
func (b *Builder) WithContext(key string, value any) *Builder {
	if b.err.context == nil {
		b.err.context = make(Context)
	}
	b.err.context[key] = value
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error { return b.err }

// CategoryOf returns the category of the first classified error in err's
// chain, or an empty category when there is none.
func CategoryOf(err error) Category {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.category
	}
	return ""
}

// IsCategory reports whether err's chain contains a classified error of the
// given category.
func IsCategory(err error, category Category) bool {
	return CategoryOf(err) == category
}
