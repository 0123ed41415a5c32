package digest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ainews/app/source"
)

const dateLayout = "2006-01-02"
const itemDateLayout = "2006-01-02 15:04"

// Render produces the daily markdown digest from stored records, grouped
// by source in fixed section order. Records within a section are sorted
// newest first. Sources with no records still get their section header.
func Render(date time.Time, records map[source.Kind][]source.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AI News Summary - %s\n\n", date.UTC().Format(dateLayout))

	for _, kind := range source.AllKinds() {
		section := append([]source.Record{}, records[kind]...)
		sort.SliceStable(section, func(i, j int) bool {
			return section[i].PublishedAt.After(section[j].PublishedAt)
		})

		fmt.Fprintf(&b, "\n## %s\n", sectionTitle(kind))
		for _, rec := range section {
			writeItem(&b, rec)
		}
	}

	return b.String()
}

func sectionTitle(kind source.Kind) string {
	switch kind {
	case source.KindTechCrunch:
		return "TechCrunch Articles"
	case source.KindYouTube:
		return "YouTube Videos"
	case source.KindReddit:
		return "Reddit Posts"
	case source.KindMedium:
		return "Medium.com Posts"
	}
	return string(kind)
}

func writeItem(b *strings.Builder, rec source.Record) {
	fmt.Fprintf(b, "- [%s](%s)\n", rec.Title, rec.URL)

	switch rec.Source {
	case source.KindTechCrunch:
		fmt.Fprintf(b, "  - Author: %s\n", rec.Author)
		fmt.Fprintf(b, "  - Date: %s\n", itemDate(rec))
		fmt.Fprintf(b, "  - Excerpt: %s\n\n", rec.Body)
	case source.KindYouTube:
		fmt.Fprintf(b, "  - Channel: %s\n", rec.Author)
		fmt.Fprintf(b, "  - Topic: %s\n", rec.Extra["topic"])
		fmt.Fprintf(b, "  - Published: %s\n\n", itemDate(rec))
	case source.KindReddit:
		fmt.Fprintf(b, "  - Subreddit: r/%s\n", rec.Extra["subreddit"])
		fmt.Fprintf(b, "  - Author: u/%s\n", rec.Author)
		fmt.Fprintf(b, "  - Score: %s\n", rec.Extra["score"])
		fmt.Fprintf(b, "  - Comments: %s\n", rec.Extra["num_comments"])
		fmt.Fprintf(b, "  - Date: %s\n\n", itemDate(rec))
	case source.KindMedium:
		fmt.Fprintf(b, "  - Topic: %s\n", rec.Extra["topic"])
		fmt.Fprintf(b, "  - Date: %s\n", itemDate(rec))
		fmt.Fprintf(b, "  - Excerpt: %s\n\n", rec.Body)
		if img := rec.Extra["image"]; img != "" {
			fmt.Fprintf(b, "  ![Article Image](%s)\n\n", img)
		}
	}
}

func itemDate(rec source.Record) string {
	return rec.PublishedAt.UTC().Format(itemDateLayout)
}

// Filename returns a non-colliding digest path for the date inside dir:
// AI_News_Summary_<date>.md, with a _NN suffix when earlier digests for
// the same day already exist.
func Filename(dir string, date time.Time) string {
	day := date.UTC().Format(dateLayout)

	name := fmt.Sprintf("AI_News_Summary_%s.md", day)
	path := filepath.Join(dir, name)
	for ix := 1; ; ix++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		name = fmt.Sprintf("AI_News_Summary_%s_%02d.md", day, ix)
		path = filepath.Join(dir, name)
	}
}

// Write renders the digest and writes it to a fresh file inside dir,
// creating dir if needed. It returns the written path.
func Write(dir string, date time.Time, records map[source.Kind][]source.Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create digest directory: %w", err)
	}

	path := Filename(dir, date)
	if err := os.WriteFile(path, []byte(Render(date, records)), 0644); err != nil {
		return "", fmt.Errorf("failed to write digest: %w", err)
	}

	return path, nil
}
