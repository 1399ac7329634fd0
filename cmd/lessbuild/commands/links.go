package commands

import (
	"github.com/class4kayaker/pelican-lesscpy/internal/linktag"
)

// LinksCmd implements the 'links' command.
type LinksCmd struct {
	SiteURL string `name:"site-url" help:"Override less.site_url as the href prefix"`
}

func (l *LinksCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	siteURL := cfg.Less.SiteURL
	if l.SiteURL != "" {
		siteURL = l.SiteURL
	}

	report, err := runMetadata(g, cfg, "links")
	if err != nil {
		return err
	}
	return linktag.Render(g.stdout(), linktag.FromRecords(report.Records, siteURL))
}
