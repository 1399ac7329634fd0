package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuildPhase_WritesCompiledStylesheet(t *testing.T) {
	site := newTestSite(t, mainEntry())

	require.NoError(t, (&BuildPhase{Compiler: newFakeCompiler()}).Run(context.Background(), site.cfg))
	assert.Equal(t, redBody, readFile(t, filepath.Join(site.out, "main.css")))

	info, err := os.Stat(filepath.Join(site.out, "main.css"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(outputFileMode), info.Mode().Perm())
}

func TestBuildPhase_CreatesNestedDirectories(t *testing.T) {
	site := newTestSite(t, config.AssetEntry{Key: "deep", Input: "style.less", Output: "theme/css/deep/site.css"})

	require.NoError(t, (&BuildPhase{Compiler: newFakeCompiler()}).Run(context.Background(), site.cfg))
	assert.Equal(t, redBody, readFile(t, filepath.Join(site.out, "theme", "css", "deep", "site.css")))

	// Second run over existing directories is fine.
	require.NoError(t, (&BuildPhase{Compiler: newFakeCompiler()}).Run(context.Background(), site.cfg))
}

func TestBuildPhase_EscapingPathsAreSkipped(t *testing.T) {
	site := newTestSite(t,
		config.AssetEntry{Key: "evil-in", Input: "../../etc/passwd", Output: "passwd.css"},
		config.AssetEntry{Key: "evil-out", Input: "style.less", Output: "../../escaped.css"},
		mainEntry(),
	)
	comp := newFakeCompiler()
	phase := &BuildPhase{Compiler: comp}

	require.NoError(t, phase.Run(context.Background(), site.cfg))

	assert.Equal(t, 1, comp.callCount())
	assert.Equal(t, 1, phase.Written)
	assert.NoFileExists(t, filepath.Join(site.out, "passwd.css"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(filepath.Dir(site.out)), "escaped.css"))
	assert.FileExists(t, filepath.Join(site.out, "main.css"))
}

func TestBuildPhase_OutputAtRootIsSkipped(t *testing.T) {
	site := newTestSite(t,
		config.AssetEntry{Key: "dot", Input: "style.less", Output: "."},
		config.AssetEntry{Key: "up-again", Input: "style.less", Output: "css/.."},
		mainEntry(),
	)
	comp := newFakeCompiler()
	logger, logs := bufferLogger()
	phase := &BuildPhase{Compiler: comp, Logger: logger}

	require.NoError(t, phase.Run(context.Background(), site.cfg))
	assert.Equal(t, 1, comp.callCount())
	assert.Equal(t, 1, phase.Written)
	assert.Contains(t, logs.String(), "output path escapes output root")

	// Nothing may land next to the output root.
	siblings, err := os.ReadDir(filepath.Dir(site.out))
	require.NoError(t, err)
	require.Len(t, siblings, 1)
	assert.Equal(t, filepath.Base(site.out), siblings[0].Name())

	written, err := os.ReadDir(site.out)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, "main.css", written[0].Name())
}

func TestBuildPhase_DuplicateOutputLastWriteWins(t *testing.T) {
	site := newTestSite(t,
		config.AssetEntry{Key: "first", Input: "a.less", Output: "css/site.css"},
		config.AssetEntry{Key: "second", Input: "b.less", Output: "css/site.css"},
	)
	comp := newFakeCompiler()
	comp.outputs["a.less"] = "a{color:blue}"
	comp.outputs["b.less"] = "b{color:green}"

	require.NoError(t, (&BuildPhase{Compiler: comp}).Run(context.Background(), site.cfg))
	assert.Equal(t, "b{color:green}", readFile(t, filepath.Join(site.out, "css", "site.css")))
}

func TestBuildPhase_DirectoryCreateFailureIsFatal(t *testing.T) {
	site := newTestSite(t,
		config.AssetEntry{Key: "blocked", Input: "style.less", Output: "css/main.css"},
		config.AssetEntry{Key: "never", Input: "other.less", Output: "other.css"},
	)
	require.NoError(t, os.MkdirAll(site.out, 0o750))
	// A regular file where the directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(site.out, "css"), []byte("x"), 0o600))

	comp := newFakeCompiler()
	err := (&BuildPhase{Compiler: comp}).Run(context.Background(), site.cfg)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem))
	assert.True(t, foundationerrors.IsFatal(err))
	assert.Zero(t, comp.callCount())
	assert.NoFileExists(t, filepath.Join(site.out, "other.css"))
}

func TestBuildPhase_CompileFailureAbortsRun(t *testing.T) {
	site := newTestSite(t,
		config.AssetEntry{Key: "broken", Input: "broken.less", Output: "css/broken.css"},
		config.AssetEntry{Key: "never", Input: "style.less", Output: "css/never.css"},
	)
	comp := newFakeCompiler()
	comp.fail["broken.less"] = foundationerrors.CompileError("unexpected token").Build()

	err := (&BuildPhase{Compiler: comp}).Run(context.Background(), site.cfg)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryCompile))
	assert.Equal(t, 1, comp.callCount())

	entries, err := os.ReadDir(filepath.Join(site.out, "css"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial or temporary files may remain")
}

func TestBuildPhase_ConsistencyMismatchWarns(t *testing.T) {
	site := newTestSite(t, mainEntry())
	site.cfg.Less.Versioned = true
	logger, logs := bufferLogger()

	var expected Records
	expected.Set("main", Record{CSSFile: "main.css?000000"})

	require.NoError(t, (&BuildPhase{Compiler: newFakeCompiler(), Logger: logger, Expected: &expected}).Run(context.Background(), site.cfg))
	assert.Contains(t, logs.String(), "does not match published metadata")
	assert.Contains(t, logs.String(), "written_css_file=main.css"+sha256Token(redBody))
}

func TestBuildPhase_ConsistencyMatchIsQuiet(t *testing.T) {
	site := newTestSite(t, mainEntry())
	site.cfg.Less.Versioned = true
	site.cfg.Less.Integrity = []string{"sha256"}
	logger, logs := bufferLogger()

	var expected Records
	expected.Set("main", Record{CSSFile: "main.css" + sha256Token(redBody), Integrity: sha256SRI(redBody)})

	require.NoError(t, (&BuildPhase{Compiler: newFakeCompiler(), Logger: logger, Expected: &expected}).Run(context.Background(), site.cfg))
	assert.NotContains(t, logs.String(), "does not match")
}

func TestBuildPhase_NoFilesSection(t *testing.T) {
	site := newTestSite(t)
	site.cfg.Less.Files = nil
	comp := newFakeCompiler()

	require.NoError(t, (&BuildPhase{Compiler: comp}).Run(context.Background(), site.cfg))
	assert.Zero(t, comp.callCount())
	assert.NoDirExists(t, site.out)
}
