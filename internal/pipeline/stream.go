package pipeline

import (
	"github.com/codeglass/structlens/internal/config"
	"github.com/codeglass/structlens/internal/token"
)

// bufferedStream adapts an already-fully-lexed token slice to the
// TokenStream contract. The teacher's bufferedLexer pulls fresh tokens
// from a live *Lexer.NextToken() one at a time; structlens's lexers
// (internal/pylex, internal/tslex) tokenize a whole source in one call
// instead of being pull-based, so there is nothing left to pull lazily
// here — the adaptation keeps the same Next/Peek(n) contract and the
// same trim-on-lookahead bookkeeping over the finished slice, so a
// consumer written against TokenStream can't tell the difference.
type bufferedStream struct {
	toks []token.Token
	pos  int
}

func newBufferedStream(toks []token.Token) *bufferedStream {
	return &bufferedStream{toks: toks}
}

func (b *bufferedStream) Next() token.Token {
	if b.pos >= len(b.toks) {
		return token.Token{Kind: token.EOF}
	}
	t := b.toks[b.pos]
	b.pos++
	return t
}

func (b *bufferedStream) Peek(n int) []token.Token {
	if b.pos > config.TokenStreamLookahead {
		b.toks = b.toks[b.pos:]
		b.pos = 0
	}
	end := b.pos + n
	if end > len(b.toks) {
		end = len(b.toks)
	}
	return b.toks[b.pos:end]
}

var _ TokenStream = (*bufferedStream)(nil)
