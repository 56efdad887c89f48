package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chazu/facet/pkg/logging"
)

// watchDelay collapses the burst of events editors emit for one save.
const watchDelay = 150 * time.Millisecond

func newWatchCmd(c *cli) *cobra.Command {
	var opts EvalOptions
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-run a script every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.watch(ctx, args[0], opts, cmd.OutOrStdout())
		},
	}
	evalFlags(cmd, &opts)
	return cmd
}

// watch evaluates path once and again after every write until ctx ends.
// The parent directory is watched so editors that save by rename are seen.
func (c *cli) watch(ctx context.Context, path string, opts EvalOptions, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		stopped bool
	)
	run := func() {
		src, err := os.ReadFile(abs)
		if err != nil {
			logging.Logger().Warn("meshctl: watch read", "path", abs, "err", err)
			return
		}
		res := c.app.Evaluate(string(src), opts)
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		if err := c.write(out, res); err != nil {
			logging.Logger().Error("meshctl: watch write", "err", err)
		}
	}
	run()

	// Nothing reaches out once watch has returned, including a run the
	// debouncer still holds.
	debounced := debounce.New(watchDelay)
	defer func() {
		debounced(func() {})
		mu.Lock()
		stopped = true
		mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logging.Logger().Debug("meshctl: change", "path", abs, "op", event.Op.String())
				debounced(run)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
