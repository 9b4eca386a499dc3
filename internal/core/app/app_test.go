package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ifacescan/internal/core/config"
	"ifacescan/internal/core/errors"
	"ifacescan/internal/engine/usage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

var detailed = Options{IncludeLine: true, IncludeContext: true}

func TestScan_AliasedCallScenario(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/usage.py": "import mylib\nfrom mylib import myfunc as mf\nmf()\n",
	})

	result, err := Scan(context.Background(), "myfunc", "mylib", root, detailed)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	m := result.Matches[0]
	assert.Equal(t, filepath.Join(root, "pkg", "usage.py"), m.FilePath)
	assert.Equal(t, 3, m.Line)
	assert.Equal(t, usage.MatchCall, m.Kind)
	assert.Equal(t, "mf()", m.SourceText)
	assert.True(t, result.Used())
	assert.Equal(t, 1, result.FilesScanned)
	assert.Equal(t, "mylib.myfunc", result.Target.Qualified())
}

func TestScan_QualifiedBaseScenario(t *testing.T) {
	root := writeTree(t, map[string]string{
		"models.py": "import mylib\nclass Foo(mylib.MyClass):\n    pass\n",
	})

	result, err := Scan(context.Background(), "MyClass", "mylib", root, detailed)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.False(t, result.Used())
}

func TestScan_OtherFunctionScenario(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py": "from mylib import myfunc\nmyfunc()\n",
	})

	result, err := Scan(context.Background(), "other_func", "mylib", root, detailed)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Equal(t, 1, result.FilesScanned)
}

func TestScan_DeterministicOrderAcrossWorkers(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 24; i++ {
		files[fmt.Sprintf("d%d/m%02d.py", i%3, i)] = "from mylib import myfunc\nmyfunc()\nmyfunc()\n"
	}
	root := writeTree(t, files)

	a := newTestApp(t, nil)
	serial, err := a.Scan(context.Background(), "myfunc", "mylib", root, Options{IncludeLine: true, Workers: 1})
	require.NoError(t, err)
	parallel, err := a.Scan(context.Background(), "myfunc", "mylib", root, Options{IncludeLine: true, Workers: 8})
	require.NoError(t, err)

	require.Len(t, serial.Matches, 48)
	assert.Equal(t, serial.Matches, parallel.Matches)
	assert.Equal(t, filepath.Join(root, "d0", "m00.py"), serial.Matches[0].FilePath)
	assert.Equal(t, 2, serial.Matches[0].Line)
	assert.Equal(t, 3, serial.Matches[1].Line)
	assert.Len(t, serial.Files(), 24)
}

func TestScan_ParseFailureDoesNotAbort(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a_broken.py": "from mylib import myfunc\ndef broken(:\n    pass\n",
		"b_good.py":   "from mylib import myfunc\nmyfunc()\n",
	})

	result, err := Scan(context.Background(), "myfunc", "mylib", root, detailed)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, filepath.Join(root, "b_good.py"), result.Matches[0].FilePath)
	assert.Equal(t, 2, result.FilesScanned)

	require.Len(t, result.ParseFailures, 1)
	assert.Equal(t, filepath.Join(root, "a_broken.py"), result.ParseFailures[0].Path)
	assert.Equal(t, 2, result.ParseFailures[0].Line)
	assert.NotEmpty(t, result.ParseFailures[0].Reason)
}

func TestScan_MissingRootIsIOFailure(t *testing.T) {
	_, err := Scan(context.Background(), "myfunc", "mylib", filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIO))
}

func TestScan_UnreadableFileIsIOFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := writeTree(t, map[string]string{"locked.py": "x = 1\n"})
	locked := filepath.Join(root, "locked.py")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	_, err := Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIO))
}

func TestScan_SymlinkedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"real/impl.py": "from mylib import myfunc\nmyfunc()\n",
	})
	if err := os.Symlink(filepath.Join(root, "real", "impl.py"), filepath.Join(root, "alias.py")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.txt"), filepath.Join(root, "notes.txt")))

	result, err := Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "alias.py"), filepath.Join(root, "real", "impl.py")}, result.Files())

	require.NoError(t, os.Symlink(filepath.Join(root, "gone.py"), filepath.Join(root, "dangling.py")))
	_, err = Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIO))
}

func TestScan_SingleFileRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"script.py": "import mylib\nmylib.myfunc()\n",
		"other.py":  "import mylib\nmylib.myfunc()\n",
	})

	result, err := Scan(context.Background(), "myfunc", "mylib", filepath.Join(root, "script.py"), detailed)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "mylib.myfunc()", result.Matches[0].SourceText)
}

func TestScan_ExcludesAndExtensions(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":                 "from mylib import myfunc\nmyfunc()\n",
		"venv/lib/site.py":       "from mylib import myfunc\nmyfunc()\n",
		"tests/test_app_skip.py": "from mylib import myfunc\nmyfunc()\n",
		"notes.txt":              "myfunc()\n",
		"stubs/api.pyi":          "from mylib import myfunc\nmyfunc()\n",
		"LEGACY.PY":              "from mylib import myfunc\nmyfunc()\n",
	})

	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Exclude.Dirs = []string{"venv"}
		cfg.Exclude.Files = []string{"*_skip.py"}
	})
	result, err := a.Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "app.py")}, result.Files())
	assert.Equal(t, 1, result.FilesScanned)

	withStubs := newTestApp(t, func(cfg *config.Config) {
		cfg.Scan.Extensions = []string{".py", ".pyi"}
	})
	result, err = withStubs.Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.NoError(t, err)
	assert.Len(t, result.Files(), 4)
}

func TestScan_DetailFlags(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py": "from mylib import myfunc\nmyfunc()\n",
	})

	result, err := Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Zero(t, result.Matches[0].Line)
	assert.Empty(t, result.Matches[0].SourceText)
	assert.Equal(t, usage.MatchCall, result.Matches[0].Kind)
}

func TestScan_FallbackToggle(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py": "from helpers import *\nmyfunc()\n",
	})

	result, err := Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.NoError(t, err)
	assert.Len(t, result.Matches, 1)

	result, err = Scan(context.Background(), "myfunc", "mylib", root, Options{DisableShortNameFallback: true})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)

	off := false
	strict := newTestApp(t, func(cfg *config.Config) { cfg.Match.ShortNameFallback = &off })
	result, err = strict.Scan(context.Background(), "myfunc", "mylib", root, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestScan_SubclassKinds(t *testing.T) {
	root := writeTree(t, map[string]string{
		"models.py": "from mylib import Base\nclass Model(Base):\n    pass\nBase()\n",
	})

	result, err := Scan(context.Background(), "Base", "mylib", root, Options{IncludeLine: true})
	require.NoError(t, err)
	counts := result.CountByKind()
	assert.Equal(t, 1, counts[usage.MatchSubclassBase])
	assert.Equal(t, 1, counts[usage.MatchCall])

	result, err = Scan(context.Background(), "Base", "mylib", root, Options{Kind: usage.KindFunction})
	require.NoError(t, err)
	assert.Equal(t, 0, result.CountByKind()[usage.MatchSubclassBase])
	assert.Len(t, result.Matches, 1)
}

func TestScan_InvalidTarget(t *testing.T) {
	_, err := Scan(context.Background(), "", "mylib", t.TempDir(), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = Scan(context.Background(), "f", "my lib", t.TempDir(), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestScan_CancelledContext(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "pass\n", "b.py": "pass\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, "myfunc", "mylib", root, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_EmptyTree(t *testing.T) {
	result, err := Scan(context.Background(), "myfunc", "mylib", t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Zero(t, result.FilesScanned)
	assert.NotNil(t, result.Matches)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = []string{"[bad"}
	_, err := New(cfg)
	require.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Scan.Extensions = []string{"py"}
	_, err = New(cfg)
	require.Error(t, err)
}
