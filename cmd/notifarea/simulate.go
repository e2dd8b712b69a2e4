package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notifarea/internal/compose"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/store"
)

var simulateOpts struct {
	count    int
	duration time.Duration
	interval time.Duration
	actions  string
	progress bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run notifications headlessly and print their lifecycle",
	Long: `Show a batch of notifications without any display and print every
show, progress and hide event until all of them have expired.

Useful for checking timing and progress settings:

  notifarea simulate --count 3 --duration 1500ms --progress`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVarP(&simulateOpts.count, "count", "n", 3,
		"Number of notifications to show")
	simulateCmd.Flags().DurationVar(&simulateOpts.duration, "duration", 0,
		"Display duration (default: notification.duration from the config)")
	simulateCmd.Flags().DurationVar(&simulateOpts.interval, "interval", 500*time.Millisecond,
		"Delay between notifications")
	simulateCmd.Flags().StringVar(&simulateOpts.actions, "actions", "",
		"Comma-separated action labels")
	simulateCmd.Flags().BoolVar(&simulateOpts.progress, "progress", false,
		"Show progress notifications")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateOpts.count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", simulateOpts.count)
	}

	duration := simulateOpts.duration
	if duration == 0 {
		duration = cfg.Notification.Duration.Duration()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loop := daemon.NewLoop(64)
	st := store.NewStore()
	center := daemon.NewCenter(st, loop, daemon.WithLogger(logger))
	defer func() {
		center.Close()
		_ = st.Close()
	}()

	composer := compose.New(center, cfg, logger, nil)
	events := newLifecycle(cmd.OutOrStdout(), simulateOpts.count, loop.Close)
	center.OnShow(events.onShow)
	center.OnHide(events.onHide)

	go func() {
		for i := range simulateOpts.count {
			if i > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(simulateOpts.interval):
				}
			}
			req := compose.Request{
				Title:       fmt.Sprintf("Notification %d", i+1),
				Message:     fmt.Sprintf("Simulated notification %d of %d", i+1, simulateOpts.count),
				Duration:    strconv.FormatInt(duration.Milliseconds(), 10),
				Actions:     simulateOpts.actions,
				UseProgress: simulateOpts.progress,
			}
			loop.Dispatch(func() {
				if _, err := composer.Submit(ctx, req); err != nil {
					logger.Error("failed to submit notification", "error", err)
					events.failed()
				}
			})
		}
	}()

	loop.Run(ctx)
	return events.summary()
}

// lifecycle prints center events and stops the run once every
// notification has been hidden.
type lifecycle struct {
	mu      sync.Mutex
	out     io.Writer
	start   time.Time
	want    int
	seen    map[model.ID]bool
	percent map[model.ID]int
	hidden  int
	done    func()
}

func newLifecycle(out io.Writer, want int, done func()) *lifecycle {
	return &lifecycle{
		out:     out,
		start:   time.Now(),
		want:    want,
		seen:    make(map[model.ID]bool),
		percent: make(map[model.ID]int),
		done:    done,
	}
}

func (l *lifecycle) printf(format string, args ...any) {
	elapsed := time.Since(l.start).Truncate(time.Millisecond)
	fmt.Fprintf(l.out, "%8s  "+format+"\n", append([]any{elapsed}, args...)...)
}

func (l *lifecycle) onShow(n *model.Notification, inserted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if inserted {
		l.seen[n.ID] = true
		l.printf("show      %s %q (%s)", n.ID, n.Title, n.Duration)
		return
	}
	if n.HasProgress() {
		// Only print every tenth percent.
		p := n.ProgressPercent()
		if p/10 != l.percent[n.ID]/10 || p == 100 {
			l.printf("progress  %s %d%%", n.ID, p)
		}
		l.percent[n.ID] = p
	}
}

func (l *lifecycle) onHide(id model.ID, reason daemon.Reason) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.printf("hide      %s (%s)", id, reason)
	l.hidden++
	l.checkDone()
}

func (l *lifecycle) failed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.want--
	l.checkDone()
}

func (l *lifecycle) checkDone() {
	if l.hidden >= l.want {
		l.done()
	}
}

func (l *lifecycle) summary() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.printf("done      %d shown, %d hidden", len(l.seen), l.hidden)
	if l.hidden < len(l.seen) {
		return fmt.Errorf("interrupted with %d notifications still visible", len(l.seen)-l.hidden)
	}
	return nil
}
