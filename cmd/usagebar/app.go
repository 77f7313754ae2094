package main

import (
	"context"
	"errors"

	"github.com/janekbaraniewski/usagebar/internal/claudeweb"
	"github.com/janekbaraniewski/usagebar/internal/history"
	"github.com/janekbaraniewski/usagebar/internal/panel"
	"github.com/janekbaraniewski/usagebar/internal/poller"
	"github.com/janekbaraniewski/usagebar/internal/settings"
	"pkt.systems/pslog"
)

const trendSamples = 48

// app bundles the pieces every long-running front end needs.
type app struct {
	settingsPath string
	settings     settings.Settings
	presenter    *panel.Presenter
	poller       *poller.Poller
	history      *history.Store
}

func newApp(ctx context.Context, settingsPath string) (*app, error) {
	s, err := settings.LoadFrom(settingsPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		settingsPath: settingsPath,
		settings:     s,
		presenter:    panel.NewPresenter(),
	}

	opts := poller.Options{Fetcher: claudeweb.New(s.ClientOptions())}
	if s.History {
		store, err := history.OpenStore(settings.HistoryPath())
		if err != nil {
			pslog.Ctx(ctx).Warn("usage history disabled", "err", err)
		} else {
			a.history = store
			opts.Recorder = store
		}
	}

	a.poller = poller.New(s.PollerConfig(), opts)
	a.poller.OnUpdate(a.presenter.Apply)
	return a, nil
}

// start launches the refresh loop and the settings watcher. Changes to base-url or
// request-timeout-seconds need a restart.
func (a *app) start(ctx context.Context) {
	a.poller.Start(ctx)
	go func() {
		err := settings.Watch(ctx, a.settingsPath, func(s settings.Settings) {
			if a.poller.UpdateConfig(s.PollerConfig()) {
				pslog.Ctx(ctx).Info("settings changed; refreshing")
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			pslog.Ctx(ctx).Warn("settings watcher stopped", "err", err)
		}
	}()
}

// trend returns recent five-hour readings for the configured account.
func (a *app) trend(ctx context.Context) []float64 {
	if a.history == nil {
		return nil
	}
	samples, err := a.history.Recent(ctx, a.poller.Config().SessionKey, trendSamples)
	if err != nil {
		pslog.Ctx(ctx).Warn("reading usage history failed", "err", err)
		return nil
	}
	return history.FiveHourSeries(samples)
}

func (a *app) close() {
	a.poller.Stop()
	if err := a.history.Close(); err != nil {
		pslog.Ctx(context.Background()).Warn("closing usage history failed", "err", err)
	}
}
