package usage

import (
	"ifacescan/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type MatchKind string

const (
	MatchCall         MatchKind = "call"
	MatchSubclassBase MatchKind = "subclass-base"
)

// UsageMatch is one syntactic reference to the target. Line is 0 unless line
// detail was requested; SourceText is empty unless context was requested.
type UsageMatch struct {
	FilePath   string    `json:"file_path"`
	Line       int       `json:"line,omitempty"`
	Kind       MatchKind `json:"kind"`
	SourceText string    `json:"source_text,omitempty"`
}

type ScanOptions struct {
	IncludeLine    bool
	IncludeContext bool
	// ShortNameFallback also accepts a bare call of the interface's short
	// name, covering star imports and re-exports the binder cannot follow.
	ShortNameFallback bool
}

func DefaultScanOptions() ScanOptions {
	return ScanOptions{ShortNameFallback: true}
}

type referenceScanner struct {
	file      *parser.SourceFile
	aliases   AliasMap
	target    TargetSpec
	qualified string
	classes   bool
	opts      ScanOptions
	matches   []UsageMatch
}

// ScanFile reports every call and (for class targets) every subclass base in
// file that resolves to target, in source order.
func ScanFile(file *parser.SourceFile, aliases AliasMap, target TargetSpec, opts ScanOptions) []UsageMatch {
	s := &referenceScanner{
		file:      file,
		aliases:   aliases,
		target:    target,
		qualified: target.Qualified(),
		classes:   target.IsClass(),
		opts:      opts,
	}
	parser.NewWalker(map[string]parser.NodeHandler{
		"call":             s.visitCall,
		"class_definition": s.visitClass,
	}).Walk(file.Root)
	return s.matches
}

func (s *referenceScanner) visitCall(node *sitter.Node) bool {
	callee := unwrapParens(node.ChildByFieldName("function"))
	if callee == nil {
		return false
	}

	matched := false
	switch callee.Kind() {
	case "identifier":
		matched = s.identifierMatches(parser.Text(s.file.Source, callee))
	case "attribute":
		matched = s.attributeMatches(callee)
	}
	if matched {
		s.record(node, MatchCall, parser.Snippet(s.file.Source, node))
	}
	return false
}

func (s *referenceScanner) visitClass(node *sitter.Node) bool {
	if !s.classes {
		return false
	}
	bases := node.ChildByFieldName("superclasses")
	if bases == nil {
		return false
	}

	for i := uint(0); i < bases.NamedChildCount(); i++ {
		base := bases.NamedChild(i)
		if base == nil || base.Kind() != "identifier" {
			continue
		}
		if s.identifierMatches(parser.Text(s.file.Source, base)) {
			header := parser.SnippetRange(s.file.Source, node.StartByte(), bases.EndByte())
			s.record(node, MatchSubclassBase, header)
		}
	}
	return false
}

func (s *referenceScanner) identifierMatches(name string) bool {
	if origin, ok := s.aliases.Lookup(name); ok && origin == s.qualified {
		return true
	}
	return s.opts.ShortNameFallback && name == s.target.InterfaceName
}

// attributeMatches rebuilds a.b.c from the attribute chain and compares it to
// the qualified target, both literally and with the root name replaced by the
// module it was imported as.
func (s *referenceScanner) attributeMatches(node *sitter.Node) bool {
	root, rest, ok := dottedPath(s.file.Source, node)
	if !ok {
		return false
	}
	if root+rest == s.qualified {
		return true
	}
	if origin, bound := s.aliases.Lookup(root); bound && origin != root {
		return origin+rest == s.qualified
	}
	return false
}

func (s *referenceScanner) record(node *sitter.Node, kind MatchKind, text string) {
	m := UsageMatch{FilePath: s.file.Path, Kind: kind}
	if s.opts.IncludeLine {
		m.Line = parser.Line(node)
	}
	if s.opts.IncludeContext {
		m.SourceText = text
	}
	s.matches = append(s.matches, m)
}

// dottedPath splits an attribute chain into its root identifier and the
// ".b.c" remainder. Chains rooted in anything but an identifier are rejected.
func dottedPath(source []byte, node *sitter.Node) (root, rest string, ok bool) {
	var attrs []string
	current := node
	for current != nil && current.Kind() == "attribute" {
		attrs = append(attrs, parser.Text(source, current.ChildByFieldName("attribute")))
		current = unwrapParens(current.ChildByFieldName("object"))
	}
	if current == nil || current.Kind() != "identifier" {
		return "", "", false
	}

	size := 0
	for _, a := range attrs {
		size += len(a) + 1
	}
	buf := make([]byte, 0, size)
	for i := len(attrs) - 1; i >= 0; i-- {
		buf = append(buf, '.')
		buf = append(buf, attrs[i]...)
	}
	return parser.Text(source, current), string(buf), true
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Kind() == "parenthesized_expression" && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}
	return node
}
