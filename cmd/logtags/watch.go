package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/angelini/logtags/internal/config"
	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/engine"
	"github.com/angelini/logtags/internal/pipelines"
)

var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "run a pipeline once, then re-take as its source files grow",
	ArgsUsage: "<pipeline.kdl> [pipeline-name]",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: logtags watch <pipeline.kdl> [pipeline-name]")
		}
		path := c.Args().First()
		name := c.Args().Get(1)

		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return err
		}

		eng, err := buildEngine(c, cfg)
		if err != nil {
			return err
		}
		defer eng.Close()

		defs, err := pipelines.ParseFile(path)
		if err != nil {
			return err
		}
		p, ok := pipelines.Find(defs, name)
		if !ok {
			return fmt.Errorf("pipeline %q not found in %s", name, path)
		}
		takeStep, ok := p.LastTake()
		if !ok {
			return fmt.Errorf("pipeline %q has no take step to re-run on growth", p.Name)
		}

		runner := pipelines.NewRunner(eng)
		results, err := runner.Run(p)
		if err != nil {
			return err
		}
		for _, result := range results {
			printResult(c, result)
		}

		leaf, err := runner.Resolve(takeStep.Target)
		if err != nil {
			return err
		}

		watchPaths := p.LoadPaths()
		if len(watchPaths) == 0 {
			return fmt.Errorf("pipeline %q loads no files to watch", p.Name)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		dirs := make(map[string]bool)
		for _, wp := range watchPaths {
			dirs[filepath.Dir(wp)] = true
		}
		for dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		// retake is unbuffered-plus-one so a burst of write events
		// collapses into a single pending re-take, never piling up
		// behind the owner goroutine that alone calls into Engine.
		retake := make(chan struct{}, 1)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			select {
			case sig := <-sigCh:
				debug.Log("watch", "received signal %v, shutting down\n", sig)
				cancel()
			case <-gctx.Done():
			}
			return nil
		})

		g.Go(func() error {
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !matchesWatch(event.Name, watchPaths) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					select {
					case retake <- struct{}{}:
					default:
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					debug.Log("watch", "watcher error: %v\n", err)
				case <-gctx.Done():
					return nil
				}
			}
		})

		// The owner goroutine is the only one that ever touches eng,
		// satisfying the engine's synchronous, single-threaded contract.
		g.Go(func() error {
			for {
				select {
				case <-retake:
					result, err := eng.Take(leaf, takeStep.Count)
					if err != nil {
						return err
					}
					printResult(c, result)
				case <-gctx.Done():
					return nil
				}
			}
		})

		return g.Wait()
	},
}

func matchesWatch(eventPath string, watchPaths []string) bool {
	for _, wp := range watchPaths {
		if match, err := doublestar.Match(wp, eventPath); err == nil && match {
			return true
		}
		if filepath.Clean(eventPath) == filepath.Clean(wp) {
			return true
		}
	}
	return false
}

func printResult(c *cli.Context, result *engine.Result) {
	for _, line := range result.Lines {
		fmt.Println(line)
	}
	if result.Stats != "" && c.Bool("stats") {
		fmt.Print(result.Stats)
	}
}
