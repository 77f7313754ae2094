package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/janekbaraniewski/usagebar/internal/settings"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long:  "Show or change the session key, demo mode and refresh interval. Running instances pick up changes immediately.",
	}

	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigSetKeyCmd(opts))
	cmd.AddCommand(newConfigDemoCmd(opts))
	cmd.AddCommand(newConfigIntervalCmd(opts))
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with the session key redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := settings.LoadFrom(opts.settingsPath)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s.Redacted())
			if err != nil {
				return fmt.Errorf("marshaling settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), opts.settingsPath)
			return err
		},
	}
}

func newConfigSetKeyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [session-key]",
		Short: "Store the claude.ai session key",
		Long: "Store the claude.ai sessionKey cookie value. Without an argument the key is read " +
			"from standard input.\n\n" + settings.SessionKeyHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				read, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				key = read
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fmt.Errorf("session key is empty")
			}

			if _, err := settings.Update(opts.settingsPath, func(s *settings.Settings) {
				s.SessionKey = key
			}); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Session key saved.")
			return err
		},
	}
}

func newConfigDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "demo <on|off>",
		Short:     "Show built-in sample data instead of contacting claude.ai",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseToggle(args[0])
			if err != nil {
				return err
			}
			if _, err := settings.Update(opts.settingsPath, func(s *settings.Settings) {
				s.DemoMode = on
			}); err != nil {
				return err
			}
			state := "off"
			if on {
				state = "on"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Demo mode %s.\n", state)
			return err
		},
	}
}

func newConfigIntervalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interval <minutes>",
		Short: fmt.Sprintf("Set the refresh interval (%d-%d minutes)", settings.MinRefreshMinutes, settings.MaxRefreshMinutes),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("interval must be a whole number of minutes: %w", err)
			}
			if minutes < settings.MinRefreshMinutes || minutes > settings.MaxRefreshMinutes {
				return fmt.Errorf("interval must be between %d and %d minutes", settings.MinRefreshMinutes, settings.MaxRefreshMinutes)
			}
			if _, err := settings.Update(opts.settingsPath, func(s *settings.Settings) {
				s.RefreshInterval = minutes
			}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Refresh interval set to %d minutes.\n", minutes)
			return err
		},
	}
}

func parseToggle(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", v)
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading session key: %w", err)
	}
	return line, nil
}
