package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

func TestResolve(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		rel     string
		want    string
		escapes bool
	}{
		{name: "plain file", rel: "style.less", want: filepath.Join(base, "style.less")},
		{name: "nested file", rel: "less/theme/main.less", want: filepath.Join(base, "less", "theme", "main.less")},
		{name: "dot segments stay inside", rel: "a/../b/./c.css", want: filepath.Join(base, "b", "c.css")},
		{name: "base itself", rel: ".", want: base},
		{name: "empty rel is base", rel: "", want: base},
		{name: "absolute inside base", rel: filepath.Join(base, "css", "x.css"), want: filepath.Join(base, "css", "x.css")},
		{name: "parent traversal", rel: "../../etc/passwd", escapes: true},
		{name: "traversal after descent", rel: "css/../../outside.css", escapes: true},
		{name: "absolute override", rel: "/etc/passwd", escapes: true},
		{name: "sibling with shared prefix", rel: "../" + filepath.Base(base) + "-evil/x.css", escapes: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(base, tt.rel)
			if tt.escapes {
				require.Error(t, err)
				assert.True(t, foundationerrors.IsPathEscape(err), "expected path escape, got %v", err)
				assert.False(t, foundationerrors.IsFatal(err))
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RelativeBase(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := Resolve("", "style.less")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "style.less"), got)

	got, err = Resolve(".", "sub/x.less")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "sub", "x.less"), got)
}

func TestRoot(t *testing.T) {
	base := t.TempDir()
	root := NewRoot(base)
	assert.Equal(t, base, root.Dir())

	got, err := root.Resolve("css/main.css")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "css", "main.css"), got)

	_, err = root.Resolve("../main.css")
	assert.True(t, foundationerrors.IsPathEscape(err))
}

func TestResolveFile(t *testing.T) {
	base := t.TempDir()

	got, err := ResolveFile(base, "css/main.css")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "css", "main.css"), got)

	for _, rel := range []string{".", "", "css/..", base} {
		t.Run("root "+rel, func(t *testing.T) {
			got, err := NewRoot(base).ResolveFile(rel)
			require.Error(t, err)
			assert.True(t, foundationerrors.IsPathEscape(err))
			assert.Empty(t, got)
		})
	}

	_, err = ResolveFile(base, "../main.css")
	assert.True(t, foundationerrors.IsPathEscape(err))
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("/srv/site", "/srv/site"))
	assert.True(t, Within("/srv/site", "/srv/site/css/a.css"))
	assert.True(t, Within("/srv/site", "/srv/site/..css"))
	assert.False(t, Within("/srv/site", "/srv/site-old/a.css"))
	assert.False(t, Within("/srv/site", "/srv"))
	assert.False(t, Within("/srv/site", "/etc/passwd"))
}
