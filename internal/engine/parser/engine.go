package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes one node of a kind it was registered for. Returning
// true tells the walker the handler has dealt with the children itself.
type NodeHandler func(node *sitter.Node) bool

// Walker is a pre-order traversal that dispatches on node kind. Kinds without a
// handler are descended into unchanged.
type Walker struct {
	handlers map[string]NodeHandler
}

func NewWalker(handlers map[string]NodeHandler) *Walker {
	return &Walker{handlers: handlers}
}

func (w *Walker) Walk(node *sitter.Node) {
	if node == nil {
		return
	}

	if handler, ok := w.handlers[node.Kind()]; ok {
		if handler(node) {
			return
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		w.Walk(node.Child(i))
	}
}
