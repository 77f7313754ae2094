package main

import (
	"time"

	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/janekbaraniewski/usagebar/internal/waybar"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"
)

const waybarTick = time.Minute

func newWaybarCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "waybar",
		Short: "Stream usage as waybar custom-module JSON",
		Long: "Print one JSON object per line for a waybar custom module with \"return-type\": \"json\". " +
			"A line is written after every refresh and once a minute so countdowns stay current.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.settingsPath)
			if err != nil {
				return err
			}
			defer a.close()

			out := waybar.NewWriter(cmd.OutOrStdout())
			emit := func() {
				if err := out.Write(a.presenter.View()); err != nil {
					pslog.Ctx(ctx).Warn("waybar write failed", "err", err)
				}
			}
			a.poller.OnUpdate(func(core.State) { emit() })
			a.start(ctx)

			ticker := time.NewTicker(waybarTick)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					emit()
				}
			}
		},
	}
}
