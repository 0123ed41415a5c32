package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/youtube/v3"
)

func TestYouTubeFetchMissingAPIKey(t *testing.T) {
	adapter := NewYouTubeAdapter("", []string{"LLM"})

	_, err := adapter.Fetch(context.Background(), NewWindow(time.Now(), 1))
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestNormalizeVideo(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	item := &youtube.SearchResult{
		Id: &youtube.ResourceId{VideoId: "abc123"},
		Snippet: &youtube.SearchResultSnippet{
			Title:        "LLM explained",
			ChannelTitle: "Some Channel",
			PublishedAt:  "2025-06-10T08:30:00Z",
			Description:  "An overview.",
		},
	}

	rec, ok := normalizeVideo(item, "LLM", fetchedAt)
	if !ok {
		t.Fatal("Expected video to normalize")
	}
	if rec.NaturalID != "abc123" {
		t.Errorf("Unexpected natural id: %s", rec.NaturalID)
	}
	if rec.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("Unexpected URL: %s", rec.URL)
	}
	if !rec.PublishedAt.Equal(time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected publish time: %v", rec.PublishedAt)
	}
	if rec.Author != "Some Channel" || rec.Extra["topic"] != "LLM" {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

func TestNormalizeVideoDropsIncomplete(t *testing.T) {
	fetchedAt := time.Now().UTC()

	cases := map[string]*youtube.SearchResult{
		"nil item":     nil,
		"no id":        {Snippet: &youtube.SearchResultSnippet{PublishedAt: "2025-06-10T08:30:00Z"}},
		"no snippet":   {Id: &youtube.ResourceId{VideoId: "abc"}},
		"bad publish":  {Id: &youtube.ResourceId{VideoId: "abc"}, Snippet: &youtube.SearchResultSnippet{PublishedAt: "yesterday"}},
		"channel only": {Id: &youtube.ResourceId{}, Snippet: &youtube.SearchResultSnippet{PublishedAt: "2025-06-10T08:30:00Z"}},
	}

	for name, item := range cases {
		if _, ok := normalizeVideo(item, "LLM", fetchedAt); ok {
			t.Errorf("Expected %s to be dropped", name)
		}
	}
}
