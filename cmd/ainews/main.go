package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ainews/app/cfg"
	"ainews/app/config"
	"ainews/app/database"
	"ainews/app/digest"
	"ainews/app/news"
	"ainews/app/source"
	"ainews/app/tasks"
)

func main() {
	godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting AI news pipeline", "version", appCfg.Version)

	sources, err := config.Load(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load source configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	window := buildWindow(appCfg)
	slog.Info("Admission window", "start", window.Start, "end", window.End)

	gate, err := source.NewLanguageGate(appCfg.TargetLanguage)
	if err != nil {
		slog.Error("Invalid target language", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetchTimeout := time.Duration(appCfg.FetchTimeout) * time.Second
	httpClient := &http.Client{Timeout: fetchTimeout}

	// The Reddit adapter builds its own OAuth client from the credentials;
	// injecting one here would skip authentication.
	adapters := []source.Adapter{
		source.NewRedditAdapter(source.RedditConfig{
			ClientID:     appCfg.RedditClientID,
			ClientSecret: appCfg.RedditClientSecret,
			UserAgent:    appCfg.RedditUserAgent,
			Channels:     sources.Reddit.Channels,
			Timeout:      fetchTimeout,
		}, nil),
		source.NewYouTubeAdapter(appCfg.YouTubeAPIKey, sources.YouTube.Topics),
		source.NewTechCrunchAdapter(httpClient, gate, appCfg.UserAgent, appCfg.ExtractContent),
		source.NewMediumAdapter(append(append([]string{}, sources.Medium.Topics...), sources.Medium.RelatedTags...), gate),
	}

	repo := database.NewItemRepository(db)
	filter := news.NewFilter(window, sources)
	dedup := news.NewGate(repo)

	ingestTasks := make([]*tasks.IngestTask, 0, len(adapters))
	for _, adapter := range adapters {
		ingestTasks = append(ingestTasks, tasks.NewIngestTask(adapter, window, filter, dedup, repo, fetchTimeout))
	}

	stats := tasks.NewRunner(ingestTasks).Run(ctx)
	slog.Info("Pipeline run finished", "succeeded", stats.Succeeded, "failed", stats.Failed)

	if err := writeDigest(repo, window, appCfg.NewsDir); err != nil {
		// The records are already stored; the next run can regenerate
		// the digest, so this does not fail the pipeline.
		slog.Error("Failed to write digest", "error", err)
	}
}

func buildWindow(appCfg *cfg.Cfg) source.Window {
	if appCfg.TargetDate != "" {
		day, _ := time.Parse("2006-01-02", appCfg.TargetDate)
		return source.SingleDay(day)
	}
	return source.NewWindow(time.Now(), appCfg.DaysBack)
}

func writeDigest(repo database.ItemStore, window source.Window, newsDir string) error {
	records := make(map[source.Kind][]source.Record, len(source.AllKinds()))
	for _, kind := range source.AllKinds() {
		items, err := repo.QueryRange(kind, window.Start, window.End)
		if err != nil {
			return err
		}
		records[kind] = items
	}

	path, err := digest.Write(newsDir, window.Day(), records)
	if err != nil {
		return err
	}

	slog.Info("Digest written", "path", path)
	return nil
}
