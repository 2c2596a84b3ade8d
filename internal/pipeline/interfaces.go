package pipeline

import "github.com/codeglass/structlens/internal/token"

// Processor is any pipeline stage: it consumes a Context and returns
// the (possibly same, mutated) Context for the next stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// TokenStream is the buffered lookahead contract a Processor reads
// tokens through instead of touching the raw slice directly.
type TokenStream interface {
	// Next consumes and returns the next token from the stream. Once
	// exhausted it returns a token.EOF token forever.
	Next() token.Token

	// Peek returns up to n tokens starting at the current position
	// without consuming them. Fewer than n are returned once the
	// stream has fewer than n left.
	Peek(n int) []token.Token
}
