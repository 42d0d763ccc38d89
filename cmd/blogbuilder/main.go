package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/config"
	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"_config.yml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Destination string `short:"d" help:"Destination directory override"`
		Drafts      bool   `help:"Include draft posts"`
		Future      bool   `help:"Include posts dated in the future"`
	} `cmd:"" help:"Build the site into the destination directory"`

	Serve struct {
		Port   int  `short:"p" help:"Port override for the preview server"`
		Drafts bool `help:"Include draft posts"`
	} `cmd:"" help:"Serve the site locally and rebuild on change"`

	New struct {
		Title string `arg:"" help:"Title of the new post"`
		Draft bool   `help:"Mark the new post as a draft"`
	} `cmd:"" help:"Scaffold a new dated post under _posts"`

	Builds struct {
		Limit int `short:"n" default:"20" help:"Number of entries to show"`
	} `cmd:"" help:"List recent build history"`

	Clean struct{} `cmd:"" help:"Remove the destination directory"`

	Init struct {
		Force bool `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Initialize a starter configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	setupLogging(CLI.Verbose)
	adapter := builderrors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	cfg, err := loadConfig()
	if err != nil {
		adapter.HandleError(err)
	}

	switch {
	case ctx.Command() == "build":
		runBuild(cfg, adapter)
	case ctx.Command() == "serve":
		runServe(cfg, adapter)
	case strings.HasPrefix(ctx.Command(), "new"):
		runNew(cfg, adapter, CLI.New.Title, CLI.New.Draft)
	case ctx.Command() == "builds":
		runBuilds(cfg, adapter, CLI.Builds.Limit)
	case ctx.Command() == "clean":
		runClean(cfg, adapter)
	case ctx.Command() == "init":
		runInit(adapter, CLI.Config, CLI.Init.Force)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if v, ok := config.EnvLogLevel(); ok {
		switch strings.ToLower(v) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}

	if CLI.Build.Destination != "" {
		cfg.Destination = CLI.Build.Destination
	} else if dest, ok := config.EnvDestination(); ok {
		cfg.Destination = dest
	}
	if CLI.Build.Drafts || CLI.Serve.Drafts {
		cfg.ShowDrafts = true
	}
	if CLI.Build.Future {
		cfg.Future = true
	}
	if CLI.Serve.Port > 0 {
		cfg.Serve.Port = CLI.Serve.Port
	}
	return cfg, nil
}
