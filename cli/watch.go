package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"
)

// WatchCmd re-runs check whenever the watched ledger file changes. Editors
// that replace files on save emit rename or create events, so the watch is
// on the directory rather than the file itself.
type WatchCmd struct {
	File string `help:"Ledger file to watch." arg:"" type:"existingfile"`

	// debounce coalesces event bursts from editors that write in several
	// steps; overridable in tests.
	debounce time.Duration
}

func (cmd *WatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	absFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(absFile)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absFile), err)
	}

	debounce := cmd.debounce
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	runCheck := func() {
		check := &CheckCmd{File: FileOrStdin{Filename: absFile}}
		if err := check.Run(ctx, globals); err != nil {
			if _, ok := err.(*CommandError); !ok {
				printError(ctx.Stderr, err.Error())
			}
		}
	}

	printInfof(ctx.Stderr, "Watching %s", pathStyle.Render(absFile))
	runCheck()

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			_, _ = fmt.Fprintln(ctx.Stderr)
			printInfof(ctx.Stderr, "Change detected, re-checking %s", filepath.Base(absFile))
			runCheck()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, fmt.Sprintf("watch error: %v", err))
		}
	}
}
