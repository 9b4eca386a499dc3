package usage

import (
	"strings"

	"ifacescan/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// AliasBinding maps one locally visible name to the dotted path it was
// imported from.
type AliasBinding struct {
	LocalName       string
	QualifiedOrigin string
	Line            int
}

// AliasMap is the frozen result of binding one file.
type AliasMap struct {
	origins  map[string]string
	bindings []AliasBinding
	star     []string
}

func (m AliasMap) Lookup(local string) (string, bool) {
	origin, ok := m.origins[local]
	return origin, ok
}

// Bindings returns every import binding in source order, including ones that
// were later rebound.
func (m AliasMap) Bindings() []AliasBinding {
	out := make([]AliasBinding, len(m.bindings))
	copy(out, m.bindings)
	return out
}

// LocalNamesFor lists the names currently bound to qualified.
func (m AliasMap) LocalNamesFor(qualified string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, b := range m.bindings {
		if seen[b.LocalName] {
			continue
		}
		if m.origins[b.LocalName] == qualified {
			seen[b.LocalName] = true
			names = append(names, b.LocalName)
		}
	}
	return names
}

// StarImports lists modules imported with "from M import *".
func (m AliasMap) StarImports() []string {
	out := make([]string, len(m.star))
	copy(out, m.star)
	return out
}

func (m AliasMap) Len() int {
	return len(m.origins)
}

type aliasBuilder struct {
	source   []byte
	origins  map[string]string
	bindings []AliasBinding
	star     []string
}

func (b *aliasBuilder) bind(local, origin string, line int) {
	if local == "" || origin == "" {
		return
	}
	b.origins[local] = origin
	b.bindings = append(b.bindings, AliasBinding{LocalName: local, QualifiedOrigin: origin, Line: line})
}

func (b *aliasBuilder) freeze() AliasMap {
	m := AliasMap{origins: b.origins, bindings: b.bindings, star: b.star}
	b.origins = nil
	b.bindings = nil
	b.star = nil
	return m
}

// Bind collects every import binding in file. Imports nested in functions,
// classes or conditional blocks are included.
func Bind(file *parser.SourceFile) AliasMap {
	b := &aliasBuilder{
		source:  file.Source,
		origins: make(map[string]string),
	}
	parser.NewWalker(map[string]parser.NodeHandler{
		"import_statement":        b.visitImport,
		"import_from_statement":   b.visitFromImport,
		"future_import_statement": b.visitFutureImport,
	}).Walk(file.Root)
	return b.freeze()
}

func (b *aliasBuilder) visitImport(node *sitter.Node) bool {
	line := parser.Line(node)
	for _, name := range parser.ChildrenByField(node, "name") {
		switch name.Kind() {
		case "dotted_name":
			module := parser.Text(b.source, name)
			b.bind(module, module, line)
		case "aliased_import":
			module, alias := b.aliased(name)
			b.bind(alias, module, line)
		}
	}
	return true
}

func (b *aliasBuilder) visitFromImport(node *sitter.Node) bool {
	module := b.fromModule(node.ChildByFieldName("module_name"))
	b.bindFromNames(node, module)
	if parser.ChildByKind(node, "wildcard_import") != nil {
		b.star = append(b.star, module)
	}
	return true
}

func (b *aliasBuilder) visitFutureImport(node *sitter.Node) bool {
	b.bindFromNames(node, "__future__")
	return true
}

func (b *aliasBuilder) bindFromNames(node *sitter.Node, module string) {
	line := parser.Line(node)
	for _, name := range parser.ChildrenByField(node, "name") {
		switch name.Kind() {
		case "dotted_name", "identifier":
			item := parser.Text(b.source, name)
			b.bind(item, joinOrigin(module, item), line)
		case "aliased_import":
			item, alias := b.aliased(name)
			b.bind(alias, joinOrigin(module, item), line)
		}
	}
}

// fromModule renders the module of a from-import. Relative modules keep one
// leading dot per level: "from ..pkg" → "..pkg", "from ." → ".".
func (b *aliasBuilder) fromModule(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind() != "relative_import" {
		return parser.Text(b.source, node)
	}

	dots := 0
	var dotted string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "import_prefix":
			dots += strings.Count(parser.Text(b.source, child), ".")
		case "dotted_name":
			dotted = parser.Text(b.source, child)
		}
	}
	return strings.Repeat(".", dots) + dotted
}

func (b *aliasBuilder) aliased(node *sitter.Node) (module, alias string) {
	module = parser.Text(b.source, node.ChildByFieldName("name"))
	alias = parser.Text(b.source, node.ChildByFieldName("alias"))
	return module, alias
}

func joinOrigin(module, item string) string {
	if module == "" {
		return item
	}
	if strings.HasSuffix(module, ".") {
		return module + item
	}
	return module + "." + item
}
