package tui

import (
	"context"
	"log/slog"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/notifarea/internal/audio"
	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/scheduler"
	"github.com/jmylchreest/notifarea/internal/store"
)

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Watched for changes (empty = no watching)
	Logger     *slog.Logger
}

// programDispatcher hands functions to the running program's Update loop.
// Dispatch must not be called from inside Update.
type programDispatcher struct {
	program atomic.Pointer[tea.Program]
}

func (d *programDispatcher) Dispatch(fn func()) {
	if p := d.program.Load(); p != nil {
		p.Send(dispatchMsg{fn: fn})
	}
}

func (d *programDispatcher) send(msg tea.Msg) {
	if p := d.program.Load(); p != nil {
		p.Send(msg)
	}
}

var _ scheduler.Dispatcher = (*programDispatcher)(nil)

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatcher := &programDispatcher{}
	st := store.NewStore()
	center := daemon.NewCenter(st, dispatcher, daemon.WithLogger(logger))
	defer func() {
		center.Close()
		_ = st.Close()
	}()

	notifier := daemon.NewInternalNotifier(center, logger)

	player := audio.NewManager(cfg, logger)
	player.SetErrorCallback(notifier.NotifyAudioError)
	center.OnShow(player.OnShow)
	defer player.Stop()

	if opts.ConfigPath != "" {
		watcher := daemon.NewConfigWatcher(opts.ConfigPath, "", logger)
		watcher.SetReloadCallback(func(newCfg *config.Config) {
			player.UpdateConfig(newCfg)
			dispatcher.send(configReloadedMsg{cfg: newCfg})
			notifier.NotifyConfigReloaded()
		})
		watcher.SetErrorCallback(notifier.NotifyConfigError)
		if err := watcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	m := New(Options{
		Config:  cfg,
		Center:  center,
		Logger:  logger,
		Context: ctx,
		Send:    dispatcher.send,
	})

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.TUI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, programOpts...)
	dispatcher.program.Store(p)

	_, err := p.Run()
	dispatcher.program.Store(nil)
	return err
}
