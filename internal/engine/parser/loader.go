package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"ifacescan/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// DefaultPythonExtensions are the suffixes routed to the Python grammar when
// no override is configured.
var DefaultPythonExtensions = []string{".py"}

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

// NewGrammarLoader loads the Python grammar and routes the given extensions to
// it. Extensions are matched case-sensitively and must start with a dot.
func NewGrammarLoader(pythonExtensions []string) (*GrammarLoader, error) {
	if len(pythonExtensions) == 0 {
		pythonExtensions = DefaultPythonExtensions
	}

	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		extensions: make(map[string]string),
	}
	gl.languages[LanguagePython] = sitter.NewLanguage(tree_sitter_python.Language())

	for _, ext := range pythonExtensions {
		normalized := strings.TrimSpace(ext)
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			return nil, fmt.Errorf("extension %q must start with a dot", ext)
		}
		gl.extensions[normalized] = LanguagePython
	}
	if len(gl.extensions) == 0 {
		return nil, fmt.Errorf("at least one source extension is required")
	}
	return gl, nil
}

// LanguageForPath returns the language routed to path's extension, or "".
func (gl *GrammarLoader) LanguageForPath(path string) string {
	return gl.extensions[filepath.Ext(path)]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	return util.SortedStringKeys(gl.extensions)
}
