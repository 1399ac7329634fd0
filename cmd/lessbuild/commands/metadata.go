package commands

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
	"github.com/class4kayaker/pelican-lesscpy/internal/site"
)

// MetadataCmd implements the 'metadata' command.
type MetadataCmd struct {
	Format string `short:"f" help:"Output format" enum:"json,yaml" default:"json"`
}

func (m *MetadataCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	report, err := runMetadata(g, cfg, "metadata")
	if err != nil {
		return err
	}

	published := map[string]any{}
	if report.Published {
		published[pipeline.ContextKey] = report.Records
	}

	var data []byte
	switch m.Format {
	case "yaml":
		data, err = yaml.Marshal(published)
	default:
		data, err = json.MarshalIndent(published, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return foundationerrors.InternalError("failed to encode metadata").WithCause(err).Build()
	}
	_, err = fmt.Fprint(g.stdout(), string(data))
	return err
}

func runMetadata(g *Global, cfg *config.Config, command string) (*site.Report, error) {
	plugin, err := pipeline.NewLessPluginFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger := commandLogger(command)
	return site.NewGenerator(cfg, plugin.WithLogger(logger)).
		WithLogger(logger).
		RunMetadata(g.ctx())
}
