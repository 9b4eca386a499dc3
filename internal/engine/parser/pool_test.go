package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Leased() != 1 {
		t.Fatalf("expected 1 leased parser, got %d", pool.Leased())
	}
	pool.Put(sp)
	if pool.Leased() != 0 {
		t.Fatalf("expected 0 leased parsers, got %d", pool.Leased())
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(pythonLanguage())
	pool.Put(nil)
}

func TestParserPool_ConcurrentParse(t *testing.T) {
	pool := NewParserPool(pythonLanguage())
	src := []byte("from lib import f\nf()\n")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree := pool.Parse(src)
			if tree == nil {
				errs <- "nil tree"
				return
			}
			defer tree.Close()
			if tree.RootNode().HasError() {
				errs <- "unexpected syntax error"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
	if pool.Leased() != 0 {
		t.Errorf("expected all parsers returned, %d still leased", pool.Leased())
	}
}
