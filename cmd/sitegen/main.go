package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/internal/config"
	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/generator"
	"git.home.luguber.info/inful/sitegen/internal/linkcheck"
	"git.home.luguber.info/inful/sitegen/internal/preview"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitegen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Override the configured output directory"`
	} `cmd:"" help:"Build the site from the configured index document"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Check struct {
		Site bool `help:"Also verify internal references in the generated output directory"`
	} `cmd:"" help:"Verify that links in the source documents resolve"`

	Preview struct {
		Port int `short:"p" help:"Port to serve the preview on" default:"8080"`
	} `cmd:"" help:"Serve the site locally and rebuild on changes"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild()
	case "init":
		err = runInit()
	case "check":
		err = runCheck()
	case "preview":
		err = runPreview()
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(sgerrors.ExitCodeFor(err))
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Output != "" {
		cfg.Output.Directory = CLI.Build.Output
	}

	return generator.New(cfg).Build()
}

func runInit() error {
	slog.Info("Initializing configuration", "path", CLI.Config, "force", CLI.Init.Force)
	return config.Init(CLI.Config, CLI.Init.Force)
}

func runCheck() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	issues, err := linkcheck.CheckSources(cfg.Index)
	if err != nil {
		return err
	}
	if CLI.Check.Site {
		siteIssues, siteErr := linkcheck.CheckSite(cfg.Output.Directory)
		if siteErr != nil {
			return siteErr
		}
		issues = append(issues, siteIssues...)
	}

	for _, issue := range issues {
		slog.Warn("Broken link", "file", issue.File, "link", issue.Link, "reason", issue.Reason)
	}
	if len(issues) > 0 {
		return sgerrors.New(sgerrors.CategoryValidation, "link check found broken links").
			WithContext("issues", len(issues)).
			Build()
	}
	slog.Info("All links resolve", "index", cfg.Index)
	return nil
}

func runPreview() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return preview.NewServer(cfg, CLI.Preview.Port).Run(ctx)
}
