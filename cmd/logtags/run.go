package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/angelini/logtags/internal/config"
	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/engine"
	"github.com/angelini/logtags/internal/pipelines"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "run a saved pipeline file once and print its Take results",
	ArgsUsage: "<pipeline.kdl>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "pipeline",
			Usage: "name of the pipeline to run, when the file defines more than one",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("usage: logtags run [--pipeline NAME] <pipeline.kdl>")
		}
		path := c.Args().First()

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
		p, ok := pipelines.Find(defs, c.String("pipeline"))
		if !ok {
			return fmt.Errorf("pipeline %q not found in %s", c.String("pipeline"), path)
		}

		runner := pipelines.NewRunner(eng)
		results, err := runner.Run(p)
		if err != nil {
			return err
		}

		for _, result := range results {
			for _, line := range result.Lines {
				fmt.Println(line)
			}
			if result.Stats != "" {
				debug.Log("stats", "%s", result.Stats)
				if c.Bool("stats") {
					fmt.Print(result.Stats)
				}
			}
		}
		return nil
	},
}

// buildEngine constructs the Engine from merged config and CLI flags.
func buildEngine(c *cli.Context, cfg *config.Config) (*engine.Engine, error) {
	return engine.New(engine.Options{
		MaxBatch:               cfg.Engine.MaxBatch,
		Debug:                  c.Bool("stats") || cfg.Debug.Enabled,
		BloomExpectedElements:  cfg.Engine.BloomExpectedElements,
		BloomFalsePositiveRate: cfg.Engine.BloomFalsePositiveRate,
	}), nil
}
