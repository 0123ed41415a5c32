package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/text/language"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// ErrInvalidConfig is fatal: the run aborts before any network or store
// I/O happens.
var ErrInvalidConfig = errors.New("invalid configuration")

type rawCfg struct {
	// Store and output locations
	DBPath  string `long:"db-path" env:"DB_NAME" default:"ai_news.db" description:"SQLite database path"`
	NewsDir string `long:"news-dir" env:"NEWS_DIR" default:"./news" description:"Directory for generated digest files"`

	// Run window
	DaysBack   int    `long:"days-back" env:"DAYS_BACK" default:"1" description:"How many days back to admit records (mutually exclusive with --date)"`
	TargetDate string `long:"date" env:"TARGET_DATE" description:"Explicit target day (YYYY-MM-DD) instead of days-back"`

	// Source run configuration
	SourcesFile string `long:"sources" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML file with per-source topics and channels"`

	// Credentials
	RedditClientID     string `long:"reddit-client-id" env:"REDDIT_CLIENT_ID" description:"Reddit API client id"`
	RedditClientSecret string `long:"reddit-client-secret" env:"REDDIT_CLIENT_SECRET" description:"Reddit API client secret"`
	RedditUserAgent    string `long:"reddit-user-agent" env:"REDDIT_USER_AGENT" description:"Reddit API user agent"`
	YouTubeAPIKey      string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key"`

	// Fetch behavior
	FetchTimeout   int    `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-source fetch timeout in seconds"`
	TargetLanguage string `long:"language" env:"TARGET_LANGUAGE" default:"en" description:"Target language for scraped sources (BCP 47)"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch article pages to fill missing excerpts"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"ainews/1.0" description:"User agent string for HTTP requests"`

	// Server
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (ainews-server)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		NewsDir:            raw.NewsDir,
		DaysBack:           raw.DaysBack,
		TargetDate:         raw.TargetDate,
		SourcesFile:        raw.SourcesFile,
		RedditClientID:     raw.RedditClientID,
		RedditClientSecret: raw.RedditClientSecret,
		RedditUserAgent:    raw.RedditUserAgent,
		YouTubeAPIKey:      raw.YouTubeAPIKey,
		FetchTimeout:       raw.FetchTimeout,
		TargetLanguage:     raw.TargetLanguage,
		ExtractContent:     raw.ExtractContent,
		UserAgent:          raw.UserAgent,
		Port:               raw.Port,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.DaysBack < 0 {
		return fmt.Errorf("%w: days-back must be non-negative, got %d", ErrInvalidConfig, cfg.DaysBack)
	}
	if cfg.TargetDate != "" {
		if _, err := time.Parse("2006-01-02", cfg.TargetDate); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD: %v", ErrInvalidConfig, err)
		}
		if cfg.DaysBack != 1 {
			return fmt.Errorf("%w: date and days-back are mutually exclusive", ErrInvalidConfig)
		}
	}
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalidConfig, cfg.FetchTimeout)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("%w: db-path is required", ErrInvalidConfig)
	}
	if _, err := language.Parse(cfg.TargetLanguage); err != nil {
		return fmt.Errorf("%w: target language %q: %v", ErrInvalidConfig, cfg.TargetLanguage, err)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
