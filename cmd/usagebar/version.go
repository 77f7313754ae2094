package main

import (
	"fmt"

	"github.com/janekbaraniewski/usagebar/internal/appupdate"
	"github.com/janekbaraniewski/usagebar/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "usagebar %s\n", version.String()); err != nil {
				return err
			}
			if !check {
				return nil
			}
			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{CurrentVersion: version.Version})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return err
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
