// Package pipeline wires the lexer, grammar parser, and their
// diagnostics into the small ordered Processor chain a caller
// (cmd/structlens) drives a source file through.
package pipeline

// Pipeline is a sequence of processing stages run in order.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline running processors in the given order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run drives ctx through every stage in order. A stage that appends to
// ctx.Errors does not stop the pipeline — a later stage is expected to
// check ctx.AST (or ctx.Tokens) for nil and skip its own work rather
// than panic on half-built state, mirroring the teacher's "continue on
// errors" pipeline.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
