package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ainews/app/source"
)

func digestRecord(kind source.Kind, id, title string, published time.Time) source.Record {
	return source.Record{
		Source:      kind,
		NaturalID:   id,
		Title:       title,
		Author:      "author",
		URL:         "https://example.com/" + id,
		PublishedAt: published,
		Extra:       map[string]string{},
	}
}

func TestRenderSectionOrder(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	out := Render(date, nil)

	if !strings.HasPrefix(out, "# AI News Summary - 2025-06-10\n") {
		t.Errorf("Unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}

	sections := []string{"## TechCrunch Articles", "## YouTube Videos", "## Reddit Posts", "## Medium.com Posts"}
	last := -1
	for _, section := range sections {
		ix := strings.Index(out, section)
		if ix < 0 {
			t.Fatalf("Missing section %q even with no records", section)
		}
		if ix < last {
			t.Errorf("Section %q out of order", section)
		}
		last = ix
	}
}

func TestRenderItemsNewestFirst(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	records := map[source.Kind][]source.Record{
		source.KindTechCrunch: {
			digestRecord(source.KindTechCrunch, "older", "Older article", date.Add(2*time.Hour)),
			digestRecord(source.KindTechCrunch, "newer", "Newer article", date.Add(8*time.Hour)),
		},
	}

	out := Render(date, records)
	if strings.Index(out, "Newer article") > strings.Index(out, "Older article") {
		t.Error("Expected newest record first within section")
	}
}

func TestRenderItemFields(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	reddit := digestRecord(source.KindReddit, "t3_a", "Reddit post", date.Add(time.Hour))
	reddit.Author = "someone"
	reddit.Extra = map[string]string{"subreddit": "LocalLLaMA", "score": "128", "num_comments": "40"}

	medium := digestRecord(source.KindMedium, "m1", "Medium post", date.Add(time.Hour))
	medium.Body = "A short excerpt."
	medium.Extra = map[string]string{"topic": "llm", "image": "https://img.example.com/a.jpg"}

	out := Render(date, map[source.Kind][]source.Record{
		source.KindReddit: {reddit},
		source.KindMedium: {medium},
	})

	for _, want := range []string{
		"- [Reddit post](https://example.com/t3_a)",
		"  - Subreddit: r/LocalLLaMA",
		"  - Author: u/someone",
		"  - Score: 128",
		"  - Comments: 40",
		"  - Topic: llm",
		"  - Excerpt: A short excerpt.",
		"  ![Article Image](https://img.example.com/a.jpg)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing line %q", want)
		}
	}
}

func TestFilenameSuffixOnCollision(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	first := Filename(dir, date)
	if filepath.Base(first) != "AI_News_Summary_2025-06-10.md" {
		t.Fatalf("Unexpected first filename: %s", first)
	}

	if err := os.WriteFile(first, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	second := Filename(dir, date)
	if filepath.Base(second) != "AI_News_Summary_2025-06-10_01.md" {
		t.Errorf("Unexpected collision filename: %s", second)
	}
}

func TestWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "news")
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	path, err := Write(dir, date, nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read digest: %v", err)
	}
	if !strings.Contains(string(data), "# AI News Summary - 2025-06-10") {
		t.Error("Digest content missing header")
	}
}
