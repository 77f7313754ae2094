package main

import (
	"fmt"

	"github.com/janekbaraniewski/usagebar/internal/browsercookie"
	"github.com/janekbaraniewski/usagebar/internal/settings"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var fromBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Import the claude.ai session key",
		Long: "Import the claude.ai sessionKey cookie from a local browser profile with --from-browser, " +
			"or follow the manual steps below and use 'usagebar config set-key'.\n\n" + settings.SessionKeyHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !fromBrowser {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), settings.SessionKeyHelp)
				return err
			}

			key, err := browsercookie.New().SessionKey(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := settings.Update(opts.settingsPath, func(s *settings.Settings) {
				s.SessionKey = key
			}); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Session key imported from browser cookies.")
			return err
		},
	}
	cmd.Flags().BoolVar(&fromBrowser, "from-browser", false, "read the sessionKey cookie from local browsers")
	return cmd
}
