// Package parsing wraps tree-sitter for Python sources. A Parser is not safe
// for concurrent use; create one per worker.
package parsing

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"modbound/internal/errors"
)

// Parser wraps a tree-sitter parser configured for Python.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Python parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source code and returns the AST root node. Tree-sitter
// recovers from syntax errors, so malformed regions become ERROR nodes
// rather than failing the whole file.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseError, "parsing python source", err)
	}
	return tree.RootNode(), nil
}

// ParseSource parses with a background context, for callers that have no
// cancellation to propagate.
func ParseSource(source []byte) (*sitter.Node, error) {
	return NewParser().Parse(context.Background(), source)
}

// NodeContent returns the source text covered by a node.
func NodeContent(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
