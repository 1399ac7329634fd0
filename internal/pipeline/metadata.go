package pipeline

import (
	"context"
	"log/slog"

	"github.com/class4kayaker/pelican-lesscpy/internal/compiler"
	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/integrity"
	"github.com/class4kayaker/pelican-lesscpy/internal/logfields"
	"github.com/class4kayaker/pelican-lesscpy/internal/metrics"
	"github.com/class4kayaker/pelican-lesscpy/internal/sandbox"
)

// MetadataPhase derives per-entry naming and integrity information and
// publishes it once to Sink.
type MetadataPhase struct {
	Compiler compiler.Compiler
	Sink     Sink
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Run processes cfg.Less.Files in order. Entries whose input escapes the
// source root are logged and skipped; a compile failure aborts the phase
// before anything is published. A configuration without a files section is a
// no-op that leaves Sink untouched.
func (p *MetadataPhase) Run(ctx context.Context, cfg *config.Config) (Records, error) {
	log := loggerOrDefault(p.Logger).With(logfields.Phase(PhaseMetadata.String()))
	rec := recorderOrNoop(p.Recorder)
	less := cfg.Less

	if less.Files == nil {
		log.Debug("No stylesheets configured")
		return Records{}, nil
	}

	src := sandbox.NewRoot(less.SourcePath)
	needContent := less.Versioned || len(less.Integrity) > 0

	var records Records
	for _, entry := range less.Files {
		if err := ctx.Err(); err != nil {
			return Records{}, cancelled(err)
		}
		elog := log.With(logfields.Entry(entry.Key))

		input, err := src.Resolve(entry.Input)
		if err != nil {
			if !foundationerrors.IsPathEscape(err) {
				elog.Error("Could not resolve stylesheet input", logfields.Input(entry.Input), logfields.Error(err))
				rec.IncEntryResult(PhaseMetadata.String(), metrics.ResultFailed)
				return Records{}, err
			}
			elog.Error("Skipping stylesheet: input path escapes source root", logfields.Input(entry.Input), logfields.Error(err))
			rec.IncEntryResult(PhaseMetadata.String(), metrics.ResultSkipped)
			continue
		}

		record := Record{CSSFile: entry.Output}
		if needContent {
			rec.IncCompile(PhaseMetadata.String())
			css, err := compiler.CompileString(ctx, p.Compiler, input)
			if err != nil {
				elog.Error("Stylesheet compilation failed", logfields.Input(input), logfields.Error(err))
				rec.IncEntryResult(PhaseMetadata.String(), metrics.ResultFailed)
				return Records{}, err
			}

			res := integrity.Compute([]byte(css), less.Integrity, less.Versioned)
			for _, alg := range res.Unknown {
				elog.Warn("Skipping unknown integrity algorithm", logfields.Algorithm(alg), logfields.Error(integrity.UnknownAlgorithmError(alg)))
			}
			record.CSSFile += res.Token
			record.Integrity = res.Attribute
		}

		records.Set(entry.Key, record)
		rec.IncEntryResult(PhaseMetadata.String(), metrics.ResultSuccess)
		elog.Debug("Stylesheet metadata ready", slog.String("css_file", record.CSSFile), slog.String("integrity", record.Integrity))
	}

	if p.Sink != nil {
		if err := p.Sink.Publish(records); err != nil {
			return Records{}, err
		}
	}
	log.Info("Published stylesheet metadata", logfields.Count(records.Len()))
	return records, nil
}
