package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

const LanguagePython = "python"

// SourceFile is one successfully parsed file. The tree is owned by the
// SourceFile and must be released with Close.
type SourceFile struct {
	Path     string
	Language string
	Source   []byte
	Tree     *sitter.Tree
	Root     *sitter.Node
}

func (f *SourceFile) Close() {
	if f == nil || f.Tree == nil {
		return
	}
	f.Tree.Close()
	f.Tree = nil
	f.Root = nil
}

// SyntaxError locates the first ERROR or MISSING node of a tree.
type SyntaxError struct {
	Line    int
	Column  int
	Missing bool
	Snippet string
}
