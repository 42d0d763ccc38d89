package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/config"
	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/frontmatter"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/gitmeta"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/history"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/logfields"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/metrics"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/permalink"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/server"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/site"
)

func runBuild(cfg *config.Config, adapter *builderrors.CLIErrorAdapter) {
	store := openHistory(cfg)
	defer closeHistory(store)

	gen := site.NewGenerator(cfg, generatorOptions(cfg, nil)...)

	report, err := gen.Build(context.Background())
	recordHistory(store, report)
	if err != nil {
		adapter.HandleError(err)
	}

	printReport(report)
	if report.HasErrors() {
		n := len(report.FailedDocuments())
		adapter.HandleError(builderrors.New(builderrors.CategoryRender, builderrors.SeverityError,
			fmt.Sprintf("build completed with %d failed documents", n)))
	}
}

func runServe(cfg *config.Config, adapter *builderrors.CLIErrorAdapter) {
	store := openHistory(cfg)
	defer closeHistory(store)

	var registry *prom.Registry
	var opts []site.Option
	if cfg.Serve.Metrics {
		registry = prom.NewRegistry()
		opts = append(opts, site.WithRecorder(metrics.NewPrometheusRecorder(registry)))
	}
	gen := site.NewGenerator(cfg, generatorOptions(cfg, opts)...)

	var srvOpts []server.ServerOption
	if registry != nil {
		srvOpts = append(srvOpts, server.WithMetricsRegistry(registry))
	}
	if store != nil {
		srvOpts = append(srvOpts, server.WithOnBuild(func(report *site.BuildReport) {
			recordHistory(store, report)
		}))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.New(cfg, gen, srvOpts...).Run(ctx); err != nil {
		adapter.HandleError(err)
	}
}

func runNew(cfg *config.Config, adapter *builderrors.CLIErrorAdapter, title string, draft bool) {
	slug := permalink.Slugify(title)
	if slug == "" {
		adapter.HandleError(builderrors.NewConfigError(fmt.Sprintf("cannot derive a slug from title %q", title)))
	}

	now := time.Now()
	name := fmt.Sprintf("%s-%s.md", now.Format("2006-01-02"), slug)
	path := filepath.Join(cfg.Source, "_posts", name)

	if _, err := os.Stat(path); err == nil {
		adapter.HandleError(builderrors.NewConfigError(fmt.Sprintf("post already exists: %s", path)))
	}

	fm := map[string]any{
		"title": title,
		"date":  now.Format("2006-01-02 15:04:05 -0700"),
	}
	if draft {
		fm["draft"] = true
	}
	fmBytes, err := yaml.Marshal(fm)
	if err != nil {
		adapter.HandleError(builderrors.WrapInternal(err, "marshal front-matter"))
	}

	content := frontmatter.Join(fmBytes, []byte("\n"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		adapter.HandleError(builderrors.WrapFileSystem(err, "create posts directory"))
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		adapter.HandleError(builderrors.WrapFileSystem(err, "write new post"))
	}
	fmt.Printf("Created %s\n", path)
}

func runBuilds(cfg *config.Config, adapter *builderrors.CLIErrorAdapter, limit int) {
	if cfg.HistoryDB == "" {
		adapter.HandleError(builderrors.NewConfigError("history_db is not configured; build history is disabled"))
	}
	store := openHistory(cfg)
	if store == nil {
		adapter.HandleError(builderrors.NewConfigError(fmt.Sprintf("cannot open history database %s", cfg.HistoryDB)))
	}
	defer closeHistory(store)

	entries, err := store.List(context.Background(), limit)
	if err != nil {
		adapter.HandleError(builderrors.WrapInternal(err, "list build history"))
	}
	if len(entries) == 0 {
		fmt.Println("No builds recorded yet.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s  %s  posts=%d pages=%d rendered=%d failed=%d\n",
			e.Started.Local().Format("2006-01-02 15:04:05"),
			e.Outcome, e.BuildID, e.Posts, e.Pages, e.Rendered, e.Failed)
		for _, issue := range e.Issues {
			fmt.Printf("    %s\n", issue)
		}
	}
}

func runClean(cfg *config.Config, adapter *builderrors.CLIErrorAdapter) {
	dest, err := filepath.Abs(cfg.Destination)
	if err != nil {
		adapter.HandleError(builderrors.WrapFileSystem(err, "resolve destination"))
	}
	if err := os.RemoveAll(dest); err != nil {
		adapter.HandleError(builderrors.WrapFileSystem(err, "remove destination"))
	}
	fmt.Printf("Removed %s\n", dest)
}

func runInit(adapter *builderrors.CLIErrorAdapter, path string, force bool) {
	if _, err := os.Stat(path); err == nil && !force {
		adapter.HandleError(builderrors.NewConfigError(fmt.Sprintf("%s already exists (use --force to overwrite)", path)))
	}
	starter := `title: My Blog
description: ""
base_url: ""

permalink: pretty
paginate: 10

serve:
  port: 4000
  livereload: true
`
	if err := os.WriteFile(path, []byte(starter), 0o644); err != nil {
		adapter.HandleError(builderrors.WrapFileSystem(err, "write configuration"))
	}
	fmt.Printf("Created %s\n", path)
}

// generatorOptions assembles the shared generator options: git-derived
// modification times plus any caller extras.
func generatorOptions(cfg *config.Config, extra []site.Option) []site.Option {
	opts := extra
	if resolver, err := gitmeta.Open(cfg.Source); err == nil {
		opts = append(opts, site.WithLastMod(resolver.LastModified))
	} else if err != gitmeta.ErrNoRepository {
		slog.Debug("git metadata unavailable", logfields.Error(err))
	}
	return opts
}

func openHistory(cfg *config.Config) *history.SQLiteStore {
	if cfg.HistoryDB == "" {
		return nil
	}
	store, err := history.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		slog.Warn("build history unavailable", logfields.Error(err))
		return nil
	}
	return store
}

func closeHistory(store *history.SQLiteStore) {
	if store != nil {
		_ = store.Close()
	}
}

func recordHistory(store *history.SQLiteStore, report *site.BuildReport) {
	if store == nil || report == nil {
		return
	}
	entry := history.Entry{
		BuildID:  report.BuildID,
		Started:  report.Start,
		Finished: report.End,
		Outcome:  string(report.Outcome),
		Posts:    report.Posts,
		Pages:    report.Pages,
		Rendered: report.Rendered,
		Failed:   report.Failed,
		Issues:   report.IssueLines(),
	}
	if err := store.Record(context.Background(), entry); err != nil {
		slog.Warn("failed to record build history", logfields.Error(err))
	}
}

func printReport(report *site.BuildReport) {
	slog.Info("build complete",
		logfields.BuildID(report.BuildID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("posts", report.Posts),
		slog.Int("pages", report.Pages),
		slog.Int("rendered", report.Rendered),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration()))
	for _, line := range report.IssueLines() {
		fmt.Fprintln(os.Stderr, line)
	}
}
