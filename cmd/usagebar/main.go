package main

import (
	"context"
	"log"
	"os"

	"github.com/janekbaraniewski/usagebar/internal/settings"
	"github.com/spf13/cobra"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

const debugEnv = "USAGEBAR_DEBUG"

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("usagebar command failed")
		return 1
	}
	return 0
}

type rootOptions struct {
	settingsPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "usagebar",
		Short: "usagebar shows your claude.ai plan usage in the terminal and status bars.",
		Long: "usagebar polls claude.ai for the 5-hour and 7-day usage windows of your account and " +
			"shows them as a terminal popup, a waybar module, or a local HTTP API.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.settingsPath, "config", settings.Path(), "path to the settings file")

	root.AddCommand(newWaybarCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}
