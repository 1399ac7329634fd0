package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/class4kayaker/pelican-lesscpy/internal/compiler"
	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/integrity"
	"github.com/class4kayaker/pelican-lesscpy/internal/logfields"
	"github.com/class4kayaker/pelican-lesscpy/internal/metrics"
	"github.com/class4kayaker/pelican-lesscpy/internal/sandbox"
)

// outputFileMode is applied to written stylesheets; they are served as static assets.
const outputFileMode = 0o644

// BuildPhase compiles every configured stylesheet into the output tree.
type BuildPhase struct {
	Compiler compiler.Compiler
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Expected, when set, holds the records published earlier in the run.
	// Written content that disagrees with them is reported as a warning.
	Expected *Records

	// Written is the number of stylesheets the last Run wrote.
	Written int
}

// Run processes cfg.Less.Files in order. Entries whose input or output path
// escapes its root are logged and skipped, as are outputs naming the output
// root itself. Failing to create an output
// directory or to compile a source aborts the run; entries after the failing
// one are not attempted.
func (p *BuildPhase) Run(ctx context.Context, cfg *config.Config) error {
	log := loggerOrDefault(p.Logger).With(logfields.Phase(PhaseFinalize.String()))
	rec := recorderOrNoop(p.Recorder)
	less := cfg.Less

	src := sandbox.NewRoot(less.SourcePath)
	out := sandbox.NewRoot(less.OutputPath)

	p.Written = 0
	for _, entry := range less.Files {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		elog := log.With(logfields.Entry(entry.Key))

		input, err := src.Resolve(entry.Input)
		if err != nil {
			if !foundationerrors.IsPathEscape(err) {
				elog.Error("Could not resolve stylesheet input", logfields.Input(entry.Input), logfields.Error(err))
				rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultFailed)
				return err
			}
			elog.Error("Skipping stylesheet: input path escapes source root", logfields.Input(entry.Input), logfields.Error(err))
			rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultSkipped)
			continue
		}
		output, err := out.ResolveFile(entry.Output)
		if err != nil {
			if !foundationerrors.IsPathEscape(err) {
				elog.Error("Could not resolve stylesheet output", logfields.Output(entry.Output), logfields.Error(err))
				rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultFailed)
				return err
			}
			elog.Error("Skipping stylesheet: output path escapes output root", logfields.Output(entry.Output), logfields.Error(err))
			rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultSkipped)
			continue
		}

		dir := filepath.Dir(output)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			ferr := foundationerrors.FileSystemError("failed to create output directory").
				WithCause(err).
				WithContext("directory", dir).
				WithContext("entry", entry.Key).
				Build()
			elog.Error("Could not create output directory", logfields.Directory(dir), logfields.Error(err))
			rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultFailed)
			return ferr
		}

		var content bytes.Buffer
		var extra io.Writer
		if p.Expected != nil {
			extra = &content
		}

		rec.IncCompile(PhaseFinalize.String())
		if err := p.writeStylesheet(ctx, input, output, extra); err != nil {
			elog.Error("Stylesheet build failed", logfields.Input(input), logfields.Output(output), logfields.Error(err))
			rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultFailed)
			return err
		}

		if p.Expected != nil {
			if want, ok := p.Expected.Get(entry.Key); ok {
				checkConsistency(elog, entry, want, content.Bytes(), less)
			}
		}

		p.Written++
		rec.IncEntryResult(PhaseFinalize.String(), metrics.ResultSuccess)
		elog.Info("Wrote stylesheet", logfields.Input(input), logfields.Output(output))
	}

	log.Info("Stylesheet build complete", logfields.Count(p.Written))
	return nil
}

// writeStylesheet compiles input into a temporary file next to output and
// renames it into place, so a failed compile never leaves a partial file.
// The compiled bytes are also copied to extra when it is non-nil.
func (p *BuildPhase) writeStylesheet(ctx context.Context, input, output string, extra io.Writer) error {
	dir := filepath.Dir(output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return foundationerrors.FileSystemError("failed to create temporary file").
			WithCause(err).
			WithContext("directory", dir).
			Build()
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	var w io.Writer = tmp
	if extra != nil {
		w = io.MultiWriter(tmp, extra)
	}

	if err := p.Compiler.Compile(ctx, input, w); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return foundationerrors.FileSystemError("failed to write stylesheet").
			WithCause(err).
			WithContext("output", output).
			Build()
	}
	// #nosec G302 -- stylesheets are public static assets.
	if err := os.Chmod(tmpName, outputFileMode); err != nil {
		return foundationerrors.FileSystemError("failed to set stylesheet permissions").
			WithCause(err).
			WithContext("output", output).
			Build()
	}
	if err := os.Rename(tmpName, output); err != nil {
		return foundationerrors.FileSystemError("failed to move stylesheet into place").
			WithCause(err).
			WithContext("output", output).
			Build()
	}
	return nil
}

func checkConsistency(log *slog.Logger, entry config.AssetEntry, want Record, content []byte, less config.LessConfig) {
	res := integrity.Compute(content, less.Integrity, less.Versioned)
	got := Record{CSSFile: entry.Output + res.Token, Integrity: res.Attribute}
	if got == want {
		return
	}
	log.Warn("Written stylesheet does not match published metadata",
		slog.String("published_css_file", want.CSSFile),
		slog.String("written_css_file", got.CSSFile),
		slog.String("published_integrity", want.Integrity),
		slog.String("written_integrity", got.Integrity))
}
