package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ainews/app/cfg"
)

// Load reads the source run configuration from path. A missing file is not
// an error: the built-in defaults cover the stock AI-news setup.
func Load(path string) (*Sources, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		sources := Defaults()
		return sources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", cfg.ErrInvalidConfig, path, err)
	}

	if err := validate(&sources); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cfg.ErrInvalidConfig, path, err)
	}

	return &sources, nil
}

// Defaults mirrors the stock configuration the service ships with.
func Defaults() *Sources {
	return &Sources{
		Reddit: RedditSource{
			Channels: []string{"LocalLLaMA", "GPT3", "MachineLearning", "MistralAI", "OpenAI"},
		},
		YouTube: YouTubeSource{
			Topics: []string{"large language models", "LLM", "AI tools", "LLM tutorials"},
		},
		TechCrunch: TechCrunchSource{
			Topics: []string{"ai", "artificial intelligence", "llm", "model", "openai", "machine learning"},
		},
		Medium: MediumSource{
			Topics: []string{"llm", "large-language-models"},
			RelatedTags: []string{
				"data-science", "prompt-engineering", "mathematical-reasoning",
				"nlp", "time-series", "text-generation", "artificial-intelligence", "ai",
			},
		},
	}
}

func validate(sources *Sources) error {
	if len(sources.Reddit.Channels) == 0 {
		return fmt.Errorf("reddit: at least one channel is required")
	}
	if len(sources.YouTube.Topics) == 0 {
		return fmt.Errorf("youtube: at least one topic is required")
	}
	if len(sources.TechCrunch.Topics) == 0 {
		return fmt.Errorf("techcrunch: at least one topic is required")
	}
	if len(sources.Medium.Topics) == 0 {
		return fmt.Errorf("medium: at least one topic is required")
	}
	return nil
}
