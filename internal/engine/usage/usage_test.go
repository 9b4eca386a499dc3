package usage

import (
	"testing"

	"ifacescan/internal/engine/parser"

	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, code string) *parser.SourceFile {
	t.Helper()
	loader, err := parser.NewGrammarLoader(nil)
	require.NoError(t, err)
	file, err := parser.NewParser(loader).ParseFile("sample.py", []byte(code))
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return file
}

func mustTarget(t *testing.T, iface, lib string, kind TargetKind) TargetSpec {
	t.Helper()
	target, err := NewTargetSpec(iface, lib, kind)
	require.NoError(t, err)
	return target
}

func withLines() ScanOptions {
	opts := DefaultScanOptions()
	opts.IncludeLine = true
	return opts
}
