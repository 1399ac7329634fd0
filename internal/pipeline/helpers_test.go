package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
)

const redBody = "body{color:red}"

// fakeCompiler emits canned CSS keyed by the input's base name and counts calls.
type fakeCompiler struct {
	mu      sync.Mutex
	calls   []string
	outputs map[string]string
	fail    map[string]error
}

func newFakeCompiler() *fakeCompiler {
	return &fakeCompiler{outputs: map[string]string{}, fail: map[string]error{}}
}

func (f *fakeCompiler) Compile(_ context.Context, inputPath string, w io.Writer) error {
	f.mu.Lock()
	f.calls = append(f.calls, inputPath)
	f.mu.Unlock()

	base := filepath.Base(inputPath)
	if err, ok := f.fail[base]; ok {
		return err
	}
	css, ok := f.outputs[base]
	if !ok {
		css = redBody
	}
	_, err := io.WriteString(w, css)
	return err
}

func (f *fakeCompiler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type testSite struct {
	src string
	out string
	cfg *config.Config
}

func newTestSite(t *testing.T, entries ...config.AssetEntry) *testSite {
	t.Helper()
	root := t.TempDir()
	s := &testSite{
		src: filepath.Join(root, "src"),
		out: filepath.Join(root, "out"),
	}
	s.cfg = &config.Config{Less: config.LessConfig{
		Files:      config.AssetEntries(entries),
		SourcePath: s.src,
		OutputPath: s.out,
	}}
	if entries == nil {
		s.cfg.Less.Files = config.AssetEntries{}
	}
	return s
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func sha256Token(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "?" + hex.EncodeToString(sum[:])[:6]
}

func sha256SRI(content string) string {
	sum := sha256.Sum256([]byte(content))
	return "sha256-" + base64.StdEncoding.EncodeToString(sum[:])
}
