package pipeline

import (
	"github.com/google/uuid"

	"github.com/codeglass/structlens/internal/ast"
	"github.com/codeglass/structlens/internal/config"
	"github.com/codeglass/structlens/internal/token"
)

// Context holds all the data passed between pipeline stages — the
// structural-analysis analogue of the teacher's PipelineContext, with
// the type-inference/module-loading fields (SymbolTable, TypeMap,
// TraitDefaults, OperatorTraits, TraitImplementations, Loader) dropped:
// this module has no type system and does not resolve imports across
// files.
type Context struct {
	Source   string
	FilePath string
	Language config.Language

	Tokens      []token.Token
	TokenStream TokenStream
	AST         *ast.TopLevel

	Errors []error

	// RunID identifies one Context's lifetime for log correlation
	// across its stages; it has no meaning beyond that.
	RunID uuid.UUID
}

// NewContext builds a Context ready for a LexerProcessor/ParserProcessor
// pipeline to run over. filePath may be empty when source didn't come
// from a file.
func NewContext(source string, language config.Language, filePath string) *Context {
	return &Context{
		Source:   source,
		FilePath: filePath,
		Language: language,
		RunID:    uuid.New(),
	}
}
