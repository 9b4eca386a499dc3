package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func Text(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// Line is the 1-based start line of node.
func Line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// Snippet returns node's text on a single line: every physical line is
// trimmed and the pieces are joined with one space.
func Snippet(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return collapseLines(string(source[node.StartByte():node.EndByte()]))
}

// SnippetRange is Snippet for an explicit byte range.
func SnippetRange(source []byte, start, end uint) string {
	if end > uint(len(source)) {
		end = uint(len(source))
	}
	if start >= end {
		return ""
	}
	return collapseLines(string(source[start:end]))
}

func collapseLines(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return strings.TrimSpace(value)
	}
	lines := strings.FieldsFunc(value, func(r rune) bool { return r == '\n' || r == '\r' })
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// ChildByKind returns the first direct child of node with the given kind.
func ChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// ChildrenByField returns node's direct children stored under field, in
// source order.
func ChildrenByField(node *sitter.Node, field string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.FieldNameForChild(uint32(i)) != field {
			continue
		}
		if child := node.Child(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}
