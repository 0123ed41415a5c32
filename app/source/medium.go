package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/playwright-community/playwright-go"
)

const (
	mediumArchiveURLFormat = "https://medium.com/tag/%s/archive"
	mediumFeedURLFormat    = "https://medium.com/feed/tag/%s"
)

var postAgeExpr = regexp.MustCompile(`\b(\d{1,2})([hd]) ago\b`)

// MediumAdapter drives a headless browser over each tag's archive page,
// scrolling to trigger lazy loading and parsing the rendered HTML after
// each pass. Without a Playwright runtime it degrades to the tag's RSS
// feed, which only exposes the most recent posts.
type MediumAdapter struct {
	topics      []string
	gate        *LanguageGate
	maxScrolls  int
	scrollPause time.Duration
	feedParser  *gofeed.Parser

	// test hooks
	runBrowser func(ctx context.Context, window Window, fetchedAt time.Time) ([]Record, error)
}

func NewMediumAdapter(topics []string, gate *LanguageGate) *MediumAdapter {
	a := &MediumAdapter{
		topics:      topics,
		gate:        gate,
		maxScrolls:  20,
		scrollPause: 2 * time.Second,
		feedParser:  gofeed.NewParser(),
	}
	a.runBrowser = a.scrapeArchives
	return a
}

func (a *MediumAdapter) Kind() Kind {
	return KindMedium
}

func (a *MediumAdapter) Fetch(ctx context.Context, window Window) ([]Record, error) {
	fetchedAt := time.Now().UTC()

	records, err := a.runBrowser(ctx, window, fetchedAt)
	if err == nil {
		return records, nil
	}

	slog.Warn("Browser scrape failed, falling back to tag feeds", "source", KindMedium, "error", err)
	return a.fetchFeeds(ctx, window, fetchedAt)
}

func (a *MediumAdapter) scrapeArchives(ctx context.Context, window Window, fetchedAt time.Time) ([]Record, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	seen := make(map[string]struct{})
	var records []Record

	for _, topic := range a.topics {
		topicRecords, err := a.scrapeTopic(ctx, page, topic, window, fetchedAt, seen)
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", topic, err)
		}
		records = append(records, topicRecords...)
	}

	return records, nil
}

func (a *MediumAdapter) scrapeTopic(ctx context.Context, page playwright.Page, topic string, window Window, fetchedAt time.Time, seen map[string]struct{}) ([]Record, error) {
	archiveURL := fmt.Sprintf(mediumArchiveURLFormat, url.PathEscape(topic))
	if _, err := page.Goto(archiveURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var records []Record
	for scroll := 0; scroll < a.maxScrolls; scroll++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		html, err := page.Content()
		if err != nil {
			return nil, fmt.Errorf("%w: read page: %v", ErrSourceUnavailable, err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("%w: parse page: %v", ErrSourceUnavailable, err)
		}

		added := 0
		for _, rec := range a.parseArchive(doc, topic, fetchedAt) {
			if _, dup := seen[rec.NaturalID]; dup {
				continue
			}
			seen[rec.NaturalID] = struct{}{}
			if !window.Contains(rec.PublishedAt) {
				continue
			}
			records = append(records, rec)
			added++
		}

		// The archive loads newest-first; a scroll pass that adds nothing
		// in-window means we have run past the window.
		if added == 0 && scroll > 0 {
			break
		}

		if _, err := page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
			return nil, fmt.Errorf("%w: scroll: %v", ErrSourceUnavailable, err)
		}
		page.WaitForTimeout(float64(a.scrollPause.Milliseconds()))
	}

	return records, nil
}

// parseArchive extracts posts from a rendered archive page. Medium's DOM
// carries no stable classes, so extraction leans on structure: links in
// data-href attributes, titles in h2/aria-label, snippets in h3, post age
// in "3h ago" / "2d ago" / "just now" markers.
func (a *MediumAdapter) parseArchive(doc *goquery.Document, topic string, fetchedAt time.Time) []Record {
	var records []Record

	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		link := extractMediumLink(article)
		title := extractMediumTitle(article)
		if link == "" || title == "" {
			return
		}
		if a.gate != nil && !a.gate.Allows(title) {
			return
		}

		rec := Record{
			Source:      KindMedium,
			NaturalID:   canonicalMediumURL(link),
			Title:       title,
			URL:         link,
			PublishedAt: extractMediumAge(article, fetchedAt),
			FetchedAt:   fetchedAt,
			Body:        extractMediumSnippet(article),
			Extra:       map[string]string{"topic": topic},
		}
		if img := extractMediumImage(article); img != "" {
			rec.Extra["image"] = img
		}
		records = append(records, rec)
	})

	return records
}

func extractMediumLink(article *goquery.Selection) string {
	link := ""
	article.Find("div[data-href]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if href, ok := div.Attr("data-href"); ok && strings.Contains(href, "https") {
			link = href
			return false
		}
		return true
	})
	return link
}

func extractMediumTitle(article *goquery.Selection) string {
	if title := strings.TrimSpace(article.Find("h2").First().Text()); title != "" {
		return title
	}
	title := ""
	article.Find("div[aria-label]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if label, ok := div.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			title = strings.TrimSpace(label)
			return false
		}
		return true
	})
	return title
}

func extractMediumSnippet(article *goquery.Selection) string {
	return strings.TrimSpace(article.Find("h3").First().Text())
}

func extractMediumImage(article *goquery.Selection) string {
	img := ""
	article.Find("img").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		src, ok := el.Attr("src")
		if !ok {
			return true
		}
		lower := strings.ToLower(src)
		if strings.Contains(lower, ".jpg") || strings.Contains(lower, ".jpeg") || strings.Contains(lower, ".png") {
			img = src
			return false
		}
		return true
	})
	return img
}

// extractMediumAge turns the "3h ago" marker into an approximate publish
// time. Posts without a recognizable marker keep a zero time and are
// rejected by the window predicate.
func extractMediumAge(article *goquery.Selection, now time.Time) time.Time {
	published := time.Time{}
	article.Find("div,span").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.TrimSpace(el.Text())
		if strings.EqualFold(text, "just now") {
			published = now
			return false
		}
		m := postAgeExpr.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "h":
			published = now.Add(-time.Duration(n) * time.Hour)
		case "d":
			published = now.AddDate(0, 0, -n)
		}
		return false
	})
	return published
}

func canonicalMediumURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

func (a *MediumAdapter) fetchFeeds(ctx context.Context, window Window, fetchedAt time.Time) ([]Record, error) {
	seen := make(map[string]struct{})
	var records []Record

	for _, topic := range a.topics {
		feedURL := fmt.Sprintf(mediumFeedURLFormat, url.PathEscape(topic))
		feed, err := a.feedParser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return nil, fmt.Errorf("tag feed %s: %w: %v", topic, ErrSourceUnavailable, err)
		}

		for _, item := range feed.Items {
			rec, ok := a.normalizeFeedItem(item, topic, fetchedAt)
			if !ok {
				continue
			}
			if _, dup := seen[rec.NaturalID]; dup {
				continue
			}
			seen[rec.NaturalID] = struct{}{}
			if !window.Contains(rec.PublishedAt) {
				continue
			}
			records = append(records, rec)
		}
	}

	return records, nil
}

func (a *MediumAdapter) normalizeFeedItem(item *gofeed.Item, topic string, fetchedAt time.Time) (Record, bool) {
	if item == nil || item.Link == "" || item.Title == "" {
		return Record{}, false
	}
	if a.gate != nil && !a.gate.Allows(item.Title) {
		return Record{}, false
	}

	published := time.Time{}
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	}

	author := ""
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		author = item.Authors[0].Name
	}

	return Record{
		Source:      KindMedium,
		NaturalID:   canonicalMediumURL(item.Link),
		Title:       item.Title,
		Author:      author,
		URL:         item.Link,
		PublishedAt: published,
		FetchedAt:   fetchedAt,
		Body:        strings.TrimSpace(item.Description),
		Extra:       map[string]string{"topic": topic},
	}, true
}
