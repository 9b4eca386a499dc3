package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ifacescan/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	for name, lang := range loader.languages {
		p.pools[name] = NewParserPool(lang)
	}
	return p
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.LanguageForPath(path) != ""
}

func (p *Parser) Loader() *GrammarLoader {
	return p.loader
}

// Leased counts the pooled parsers currently checked out across grammars.
func (p *Parser) Leased() int {
	total := 0
	for _, pool := range p.pools {
		total += pool.Leased()
	}
	return total
}

// ParseFile parses content as the language routed to path. A tree containing
// syntax errors is released and reported as CodeParseFailure carrying the
// location of the first error.
func (p *Parser) ParseFile(path string, content []byte) (*SourceFile, error) {
	lang := p.loader.LanguageForPath(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported file extension")
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	tree := pool.Parse(content)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}

	root := tree.RootNode()
	if root.HasError() {
		se := FirstSyntaxError(root, content)
		tree.Close()
		return nil, parseFailure(path, se.describe(), se.Line)
	}
	if legacy := FirstLegacySyntax(root); legacy != nil {
		line := Line(legacy)
		reason := legacyReason(legacy, line)
		tree.Close()
		return nil, parseFailure(path, reason, line)
	}

	return &SourceFile{
		Path:     path,
		Language: lang,
		Source:   content,
		Tree:     tree,
		Root:     root,
	}, nil
}

func parseFailure(path, message string, line int) error {
	de := &errors.DomainError{Code: errors.CodeParseFailure, Message: message}
	return de.WithContext(errors.CtxPath, path).WithContext(errors.CtxLine, line)
}

// FirstLegacySyntax returns the first node the grammar accepts only for
// Python 2 compatibility: print and exec statements, "except E, e:" clauses
// and the "<>" operator. Python 3 rejects all of them.
func FirstLegacySyntax(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "print_statement", "exec_statement":
		return node
	case "except_clause":
		if ChildByKind(node, ",") != nil {
			return node
		}
	case "comparison_operator":
		if ChildByKind(node, "<>") != nil {
			return node
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if found := FirstLegacySyntax(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func legacyReason(node *sitter.Node, line int) string {
	var what string
	switch node.Kind() {
	case "print_statement":
		what = "print statement"
	case "exec_statement":
		what = "exec statement"
	case "except_clause":
		what = "comma in except clause"
	default:
		what = "<> operator"
	}
	return fmt.Sprintf("invalid syntax at line %d column %d: Python 2 %s", line, int(node.StartPosition().Column)+1, what)
}

// FirstSyntaxError finds the earliest ERROR or MISSING node, descending only
// into subtrees that report errors.
func FirstSyntaxError(root *sitter.Node, source []byte) SyntaxError {
	node := root
	for node != nil {
		if node.IsError() || node.IsMissing() {
			return SyntaxError{
				Line:    Line(node),
				Column:  int(node.StartPosition().Column) + 1,
				Missing: node.IsMissing(),
				Snippet: Snippet(source, node),
			}
		}
		var next *sitter.Node
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child != nil && (child.HasError() || child.IsMissing()) {
				next = child
				break
			}
		}
		if next == nil {
			return SyntaxError{Line: Line(node), Column: int(node.StartPosition().Column) + 1}
		}
		node = next
	}
	return SyntaxError{Line: 1, Column: 1}
}

func (e SyntaxError) describe() string {
	var b strings.Builder
	if e.Missing {
		b.WriteString("missing token")
	} else {
		b.WriteString("invalid syntax")
	}
	fmt.Fprintf(&b, " at line %d column %d", e.Line, e.Column)
	if e.Snippet != "" && !e.Missing {
		fmt.Fprintf(&b, " near %q", truncateRunes(e.Snippet, 40))
	}
	return b.String()
}

// truncateRunes cuts value to at most limit runes, marking the cut with "...".
func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit]) + "..."
}
