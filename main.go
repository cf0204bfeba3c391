package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/samplegen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	flags := &commands.Flags{}
	ctrl := &commands.Controller{
		Flags: flags,
		Out:   os.Stdout,
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	readGenerateFlags := func(c *cli.Command) {
		flags.Sizes = c.StringSlice("size")
		flags.Workers = int(c.Int("workers"))
	}

	generate := func(ctx context.Context, c *cli.Command) error {
		readGenerateFlags(c)
		return ctrl.Generate(ctx)
	}

	app := &cli.Command{
		Name:    "samplegen",
		Usage:   "Generate synthetic Python codebases for type-checker benchmarks",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("SAMPLEGEN_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to samplegen.json (default: search upward from the working directory)",
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "directory that receives one subdirectory per size (default: ./sample-code, relative to samplegen.json or the working directory)",
				Destination: &flags.Output,
			},
			&cli.StringSliceFlag{
				Name:  "size",
				Usage: "size label to process (repeatable, default all)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "modules written in parallel per size",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			flags.LogLevel = level.String()
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Action: generate,
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Regenerate the sample codebases",
				Action: generate,
			},
			{
				Name:  "verify",
				Usage: "Check generated codebases against a fresh generation",
				Action: func(ctx context.Context, c *cli.Command) error {
					readGenerateFlags(c)
					return ctrl.Verify(ctx)
				},
			},
			{
				Name:  "package",
				Usage: "Write a .tar.gz archive of each codebase",
				Action: func(ctx context.Context, c *cli.Command) error {
					readGenerateFlags(c)
					return ctrl.Package(ctx)
				},
			},
			{
				Name:  "watch",
				Usage: "Regenerate whenever samplegen.json changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					readGenerateFlags(c)
					return ctrl.Watch(ctx)
				},
			},
			{
				Name:  "init",
				Usage: "Create a samplegen.json interactively",
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx)
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run samplegen")
	}
}
