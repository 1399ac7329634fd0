package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/class4kayaker/pelican-lesscpy/cmd/lessbuild/commands"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("lessbuild"),
		kong.Description("Compile, fingerprint and publish stylesheets for a static site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Context: ctx, Stdout: os.Stdout}, cli)
	if err != nil {
		cancel()
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
