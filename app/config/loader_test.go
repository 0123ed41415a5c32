package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ainews/app/cfg"
)

func TestLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
reddit:
  channels:
    - LocalLLaMA
    - OpenAI

youtube:
  topics:
    - "large language models"

techcrunch:
  topics:
    - ai

medium:
  topics:
    - llm
  related_tags:
    - nlp
`

	path := filepath.Join(tempDir, "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(sources.Reddit.Channels) != 2 {
		t.Errorf("Expected 2 reddit channels, got %d", len(sources.Reddit.Channels))
	}
	if sources.YouTube.Topics[0] != "large language models" {
		t.Errorf("Unexpected youtube topic: %s", sources.YouTube.Topics[0])
	}
	if len(sources.Medium.RelatedTags) != 1 {
		t.Errorf("Expected 1 related tag, got %d", len(sources.Medium.RelatedTags))
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	sources, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatal(err)
	}

	defaults := Defaults()
	if len(sources.Reddit.Channels) != len(defaults.Reddit.Channels) {
		t.Errorf("Expected default reddit channels, got %v", sources.Reddit.Channels)
	}
}

func TestLoadEmptyChannelList(t *testing.T) {
	tempDir := t.TempDir()

	content := `
reddit:
  channels: []
youtube:
  topics: ["LLM"]
techcrunch:
  topics: ["ai"]
medium:
  topics: ["llm"]
`

	path := filepath.Join(tempDir, "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for empty reddit channel list")
	}
	if !errors.Is(err, cfg.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	tempDir := t.TempDir()

	path := filepath.Join(tempDir, "sources.yml")
	if err := os.WriteFile(path, []byte("reddit: [not: valid"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, cfg.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for malformed YAML, got %v", err)
	}
}
