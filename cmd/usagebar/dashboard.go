package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/janekbaraniewski/usagebar/internal/settings"
	"github.com/janekbaraniewski/usagebar/internal/tui"
	"pkt.systems/pslog"
)

func runDashboard(ctx context.Context, opts *rootOptions) error {
	ctx, closeLog, err := tuiLogger(ctx)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(ctx, opts.settingsPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(a.presenter)
	model.SetOnRefresh(a.poller.TriggerNow)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	a.poller.OnUpdate(func(s core.State) {
		program.Send(tui.StateMsg(s))
		if s.Kind == core.StateConnected {
			program.Send(tui.HistoryMsg(a.trend(ctx)))
		}
	})
	if trend := a.trend(ctx); len(trend) > 0 {
		go program.Send(tui.HistoryMsg(trend))
	}

	a.start(ctx)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// tuiLogger sends logs to a file while bubbletea owns the terminal. With USAGEBAR_DEBUG
// set, the stderr logger from main is kept.
func tuiLogger(ctx context.Context) (context.Context, func(), error) {
	if os.Getenv(debugEnv) != "" {
		return ctx, func() {}, nil
	}
	path := settings.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return ctx, nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return ctx, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := pslog.NewWithOptions(f, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.InfoLevel,
	})
	prev := log.Writer()
	log.SetOutput(pslog.LogLogger(logger).Writer())
	return pslog.ContextWithLogger(ctx, logger), func() {
		log.SetOutput(prev)
		_ = f.Close()
	}, nil
}
