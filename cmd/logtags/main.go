package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "logtags",
		Usage:                  "interactively explore large line-oriented logs through a cached evaluation engine",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "directory to search for .logtags.toml",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print the engine's cache-extension stats report after each take",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "write a timestamped debug trace to a temp file",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug-log") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return fmt.Errorf("failed to init debug log: %w", err)
				}
				debug.EnableDebug = "true"
				fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			runCommand,
			watchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "logtags: %v\n", err)
		os.Exit(1)
	}
}
