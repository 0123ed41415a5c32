package config

// Sources is the run configuration for the four adapters: which channels,
// topics, and tags each one covers. Loaded once per run and read-only
// afterwards.
type Sources struct {
	Reddit     RedditSource     `yaml:"reddit"`
	YouTube    YouTubeSource    `yaml:"youtube"`
	TechCrunch TechCrunchSource `yaml:"techcrunch"`
	Medium     MediumSource     `yaml:"medium"`
}

type RedditSource struct {
	Channels []string `yaml:"channels"`
}

type YouTubeSource struct {
	Topics []string `yaml:"topics"`
}

type TechCrunchSource struct {
	Topics []string `yaml:"topics"`
}

type MediumSource struct {
	Topics      []string `yaml:"topics"`
	RelatedTags []string `yaml:"related_tags"`
}
