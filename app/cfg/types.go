package cfg

type Cfg struct {
	// Store and output locations
	DBPath  string
	NewsDir string

	// Run window
	DaysBack   int
	TargetDate string // YYYY-MM-DD, single-day mode; empty means days-back mode

	// Source run configuration file
	SourcesFile string

	// Credentials
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	YouTubeAPIKey      string

	// Fetch behavior
	FetchTimeout   int // seconds
	TargetLanguage string
	ExtractContent bool
	UserAgent      string

	// Server (ainews-server binary)
	Port string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
