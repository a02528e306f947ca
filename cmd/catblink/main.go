package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"libdb.so/catblink"
	"libdb.so/catblink/internal/source"
)

const defaultConfig = "catblink.toml"

var (
	config  = defaultConfig
	verbose = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [music_source]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "music_source is a local file or an http(s) URL (default %q).\n\n", source.DefaultSource)
		pflag.PrintDefaults()
	}
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if pflag.NArg() > 1 {
		return fmt.Errorf("expected at most one music source, got %d", pflag.NArg())
	}

	src := source.DefaultSource
	if pflag.NArg() == 1 {
		src = pflag.Arg(0)
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	path, err := source.Resolve(ctx, src, source.Options{
		DownloadPath: cfg.DownloadPath,
		ChunkSize:    cfg.DownloadChunk,
		Logger:       slog.Default(),
		Progress:     os.Stdout,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	r, err := catblink.NewRunner(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	fmt.Printf("Analyzing %s...\n", path)

	if _, err := r.Run(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to blink along: %w", err)
	}

	return nil
}

func readConfig() (*catblink.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		// The default file is optional.
		if errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			return catblink.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := catblink.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
