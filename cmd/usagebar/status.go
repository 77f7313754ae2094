package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/janekbaraniewski/usagebar/internal/panel"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Refresh once and print the current usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.settingsPath)
			if err != nil {
				return err
			}
			defer a.close()

			state := a.poller.RunCycle(ctx)
			v := a.presenter.View()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(v); err != nil {
					return fmt.Errorf("encoding status: %w", err)
				}
			} else if err := writeStatus(cmd.OutOrStdout(), v); err != nil {
				return err
			}

			if state.Kind == core.StateError {
				return fmt.Errorf("refresh failed: %s", state.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	return cmd
}

func writeStatus(w io.Writer, v panel.View) error {
	if _, err := fmt.Fprintf(w, "Claude usage: %s remaining (%s)\n", v.PanelLabel, v.Status); err != nil {
		return err
	}
	for _, r := range v.Rows {
		if _, err := fmt.Fprintf(w, "  %-15s %-13s %4s  %-8s %s\n", r.Section, r.Label, r.PercentText, r.Badge, r.Countdown); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Updated %s. Details: %s\n", v.LastRefreshed, v.DashboardURL)
	return err
}
