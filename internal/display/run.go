package display

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/notifarea/internal/audio"
	"github.com/jmylchreest/notifarea/internal/compose"
	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
	"github.com/jmylchreest/notifarea/internal/store"
	"github.com/jmylchreest/notifarea/internal/theme/gtktheme"
)

const appID = "io.github.jmylchreest.notifarea"

// RunOptions configures the GTK frontend.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Watched for changes (empty = no watching)
	ThemesDir  string
	Logger     *slog.Logger
}

// session is everything created on activation. It is only touched from the
// GTK main thread.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger

	center     *daemon.Center
	notifier   *daemon.InternalNotifier
	player     *audio.Manager
	themes     *gtktheme.Loader
	composer   *compose.Composer
	host       *Host
	overlay    *Overlay
	screen     *screen
	controller *overlay.Controller
	frames     *frameLoop
	watcher    *daemon.ConfigWatcher

	refreshQueued atomic.Bool
}

// Run starts the GTK application and blocks until it quits.
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

	app := adw.NewApplication(appID, 0)

	var (
		s       *session
		initErr error
	)

	go func() {
		<-ctx.Done()
		glib.IdleAdd(func() {
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if s != nil {
			s.host.Window().Present()
			return
		}
		var err error
		s, err = activate(ctx, app, cfg, opts, logger)
		if err != nil {
			initErr = err
			app.Quit()
		}
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if s != nil {
			s.close()
		}
	})

	status := app.Run(os.Args[:1])
	if initErr != nil {
		return initErr
	}
	if status != 0 {
		return &DisplayError{Message: fmt.Sprintf("application exited with status %d", status)}
	}
	return nil
}

func activate(ctx context.Context, app *adw.Application, cfg *config.Config, opts RunOptions, logger *slog.Logger) (*session, error) {
	s := &session{ctx: ctx, cfg: cfg, logger: logger}

	s.screen = newScreen(logger)
	if s.screen.display == nil {
		return nil, &DisplayError{Message: "no display available"}
	}

	applyColorScheme(cfg.Theme.ColorScheme)

	s.themes = gtktheme.NewLoader(opts.ThemesDir, logger)
	if _, err := s.themes.LoadTheme(cfg.Theme.Name); err != nil {
		return nil, &DisplayError{Message: "failed to load theme", Cause: err}
	}
	s.themes.Apply(s.screen.display)

	st := store.NewStore()
	s.center = daemon.NewCenter(st, IdleDispatcher{}, daemon.WithLogger(logger))
	s.notifier = daemon.NewInternalNotifier(s.center, logger)

	s.player = audio.NewManager(cfg, logger)
	s.player.SetErrorCallback(s.notifier.NotifyAudioError)
	s.center.OnShow(s.player.OnShow)

	s.composer = compose.New(s.center, cfg, logger, s.onAction)
	s.host = NewHost(ctx, app, s.center, s.composer, cfg, logger)

	s.overlay = NewOverlay(&app.Application, cfg.Overlay.Layout(), s.themes, cardHandlers{
		dismiss: func(id model.ID) { s.center.Hide(id) },
		action:  func(id model.ID, label string) { s.center.Act(id, label) },
	}, logger)
	s.screen.Place(s.overlay.Window())

	engine := overlay.NewEngine(cfg.Overlay.Layout(), s.screen.Height())
	s.controller = overlay.NewController(engine, st, s.overlay, nil)
	s.frames = &frameLoop{tick: s.controller.Tick}
	s.screen.OnChange(func() {
		engine.SetScreenHeight(s.screen.Height(), time.Now())
		s.refresh()
	})

	go s.watchStore(st.Subscribe())

	if opts.ConfigPath != "" {
		s.watcher = daemon.NewConfigWatcher(opts.ConfigPath, opts.ThemesDir, logger)
		s.watcher.SetReloadCallback(func(newCfg *config.Config) {
			glib.IdleAdd(func() { s.applyConfig(newCfg) })
		})
		s.watcher.SetErrorCallback(s.notifier.NotifyConfigError)
		s.watcher.SetThemeCallback(func(name string) {
			glib.IdleAdd(func() { s.reloadTheme(name) })
		})
		if err := s.watcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
			s.watcher = nil
		}
	}

	s.host.Window().Present()
	s.refresh()
	logger.Info("notifarea ready", "screen_height", s.screen.Height())
	return s, nil
}

// watchStore coalesces store changes into one refresh per idle cycle.
func (s *session) watchStore(changes <-chan store.ChangeEvent) {
	for range changes {
		if s.refreshQueued.Swap(true) {
			continue
		}
		glib.IdleAdd(func() {
			s.refreshQueued.Store(false)
			s.refresh()
		})
	}
}

func (s *session) refresh() {
	s.host.RefreshHistory()
	if s.controller.Refresh() {
		s.frames.Start()
	}
}

func (s *session) onAction(id model.ID, label string) {
	s.logger.Info("notification action invoked", "id", id, "action", label)
	s.host.SetStatus(fmt.Sprintf("Action %q on %s", label, id))
}

func (s *session) applyConfig(cfg *config.Config) {
	old := s.cfg
	s.cfg = cfg

	s.player.UpdateConfig(cfg)
	s.composer.SetConfig(cfg)
	applyColorScheme(cfg.Theme.ColorScheme)

	layout := cfg.Overlay.Layout()
	if layout != old.Overlay.Layout() {
		s.overlay.SetConfig(layout)
		if layout.Width != old.Overlay.Width || layout.ItemHeight != old.Overlay.ItemHeight || layout.Spacing != old.Overlay.Spacing {
			s.overlay.Rebuild()
		}
		s.controller.Engine().SetConfig(layout, time.Now())
	}

	if cfg.Theme.Name != old.Theme.Name {
		s.switchTheme(cfg.Theme.Name)
	}

	s.refresh()
	s.notifier.NotifyConfigReloaded()
}

// switchTheme loads name into the installed provider, which restyles every
// window.
func (s *session) switchTheme(name string) {
	if _, err := s.themes.LoadTheme(name); err != nil {
		s.notifier.NotifyThemeError(err)
		return
	}
	s.notifier.NotifyThemeReloaded(s.themes.CurrentName())
}

// reloadTheme rereads the loaded theme when the file that changed is the one
// in use. An unknown configured name is served by the default theme, so
// edits to that file count.
func (s *session) reloadTheme(name string) {
	if name != s.themes.CurrentName() {
		return
	}
	if err := s.themes.Reload(); err != nil {
		s.notifier.NotifyThemeError(err)
		return
	}
	s.notifier.NotifyThemeReloaded(name)
}

func (s *session) close() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.player.Stop()
	s.center.Close()
	_ = s.center.Store().Close()
	s.overlay.Destroy()
}
