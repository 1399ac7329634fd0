package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/integrity"
	"github.com/class4kayaker/pelican-lesscpy/internal/linktag"
	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
	"github.com/class4kayaker/pelican-lesscpy/internal/sandbox"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct{}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	report, err := runMetadata(g, cfg, "verify")
	if err != nil {
		return err
	}

	problems := verifyOutputs(cfg, report.Records)
	problems = append(problems, verifyHeadPartial(cfg, report.Records)...)

	out := g.stdout()
	for _, p := range problems {
		fmt.Fprintf(out, "MISMATCH %s\n", p)
	}
	if len(problems) > 0 {
		return foundationerrors.BuildError("built stylesheets do not match metadata").
			WithContext("mismatches", len(problems)).
			Build()
	}
	if !cfg.Less.Versioned && len(cfg.Less.Integrity) == 0 {
		fmt.Fprintln(out, "NOTE neither versioning nor integrity is enabled; only the presence of built stylesheets was checked")
	}
	fmt.Fprintf(out, "OK %d stylesheet(s) verified\n", report.Records.Len())
	return nil
}

// verifyOutputs re-reads every written stylesheet and checks it against its
// record: the version token must match and every recognised digest in the
// integrity attribute must verify.
func verifyOutputs(cfg *config.Config, records pipeline.Records) []string {
	var problems []string
	out := sandbox.NewRoot(cfg.Less.OutputPath)
	for _, key := range records.Keys() {
		want, _ := records.Get(key)
		entry, ok := cfg.Less.Files.Lookup(key)
		if !ok {
			continue
		}
		path, err := out.ResolveFile(entry.Output)
		if err != nil {
			if !foundationerrors.IsPathEscape(err) {
				problems = append(problems, fmt.Sprintf("%s: %v", key, err))
				continue
			}
			slog.Debug("Output escapes output root; not verified", "entry", key, "error", err)
			continue
		}
		// #nosec G304 -- path is confined to the output root.
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				problems = append(problems, fmt.Sprintf("%s: %s has not been built", key, path))
				continue
			}
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			continue
		}

		cssFile := entry.Output
		if cfg.Less.Versioned {
			cssFile += integrity.Token(content)
		}
		if cssFile != want.CSSFile {
			problems = append(problems, fmt.Sprintf("%s: %s is stale (expected %s, found %s)", key, path, want.CSSFile, cssFile))
			continue
		}
		if want.Integrity != "" && !integrity.Verify(content, want.Integrity) {
			problems = append(problems, fmt.Sprintf("%s: %s does not match integrity %q", key, path, want.Integrity))
		}
	}
	return problems
}

// verifyHeadPartial compares the rendered partial, when present, with the expected link tags.
func verifyHeadPartial(cfg *config.Config, records pipeline.Records) []string {
	if cfg.Less.HeadPartial == "" {
		return nil
	}
	path, err := sandbox.NewRoot(cfg.Less.OutputPath).ResolveFile(cfg.Less.HeadPartial)
	if err != nil {
		if !foundationerrors.IsPathEscape(err) {
			return []string{fmt.Sprintf("head partial: %v", err)}
		}
		return nil
	}
	// #nosec G304 -- path is confined to the output root.
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{fmt.Sprintf("head partial %s has not been written", path)}
		}
		return []string{fmt.Sprintf("head partial %s: %v", path, err)}
	}
	defer func() { _ = f.Close() }()

	got, err := linktag.Extract(f)
	if err != nil {
		return []string{fmt.Sprintf("head partial %s: %v", path, err)}
	}
	want := linktag.FromRecords(records, cfg.Less.SiteURL)
	if len(got) != len(want) {
		return []string{fmt.Sprintf("head partial %s lists %d stylesheet(s), expected %d", path, len(got), len(want))}
	}
	var problems []string
	for i := range want {
		if got[i] != want[i] {
			problems = append(problems, fmt.Sprintf("head partial %s: link %d is %q, expected %q", path, i+1, got[i].Href, want[i].Href))
		}
	}
	return problems
}
