package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func techCrunchCard(title, link, author, datetime, excerpt string) string {
	return fmt.Sprintf(`
		<li class="wp-block-post">
			<h3 class="wp-block-post-title"><a href="%s">%s</a></h3>
			<div class="wp-block-tc23-author-card-name"><a href="https://techcrunch.com/author/%s/">x</a></div>
			<time datetime="%s">some label</time>
			<p class="wp-block-post-excerpt__excerpt">%s</p>
		</li>`, link, title, author, datetime, excerpt)
}

func TestTechCrunchParseListing(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	window := NewWindow(now, 1)

	html := "<ul>" +
		techCrunchCard("The latest model release explained", "https://techcrunch.com/2025/06/10/model/",
			"jane-doe", "2025-06-10T09:00:00Z", "A deep dive into the release.") +
		techCrunchCard("An old story", "https://techcrunch.com/2025/05/01/old/",
			"john-roe", "2025-05-01T09:00:00Z", "Ancient news.") +
		"</ul>"

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	adapter := NewTechCrunchAdapter(nil, nil, "test-agent", false)
	records, anyInWindow := adapter.parseListing(doc, window, now)

	if !anyInWindow {
		t.Error("Expected page to contain in-window cards")
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 in-window record, got %d", len(records))
	}

	rec := records[0]
	if rec.Title != "The latest model release explained" {
		t.Errorf("Unexpected title: %q", rec.Title)
	}
	if rec.Author != "jane doe" {
		t.Errorf("Expected author slug to be de-hyphenated, got %q", rec.Author)
	}
	if rec.Body != "A deep dive into the release." {
		t.Errorf("Unexpected excerpt: %q", rec.Body)
	}
	if rec.NaturalID != rec.URL {
		t.Error("Expected article URL to be the natural id")
	}
}

func TestTechCrunchParseListingLanguageGate(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	window := NewWindow(now, 1)

	gate, err := NewLanguageGate("en")
	if err != nil {
		t.Fatal(err)
	}

	html := "<ul>" +
		techCrunchCard("The latest model release explained in detail", "https://techcrunch.com/2025/06/10/model/",
			"jane-doe", "2025-06-10T09:00:00Z", "A deep dive into the new release and what it means for developers.") +
		techCrunchCard("Новая языковая модель представлена исследователями сегодня",
			"https://techcrunch.com/2025/06/10/foreign/",
			"ivan-petrov", "2025-06-10T10:00:00Z",
			"Исследователи представили новую модель, обученную на большом корпусе текстов.") +
		"</ul>"

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	adapter := NewTechCrunchAdapter(nil, gate, "test-agent", false)
	records, anyInWindow := adapter.parseListing(doc, window, now)

	if !anyInWindow {
		t.Error("Expected page to contain in-window cards")
	}
	if len(records) != 1 {
		t.Fatalf("Expected the foreign-language card to be dropped, got %d records", len(records))
	}
	if records[0].URL != "https://techcrunch.com/2025/06/10/model/" {
		t.Errorf("Unexpected surviving record: %s", records[0].URL)
	}
}

func TestParseCardTimeRelativeLabels(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		`<div><time>3 hours ago</time></div>`: now,
		`<div><time>2 days ago</time></div>`:  now.AddDate(0, 0, -2),
		`<div><time>whenever</time></div>`:    {},
		`<div></div>`:                         {},
	}

	for html, want := range cases {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			t.Fatal(err)
		}
		got := parseCardTime(doc.Find("div"), now)
		if !got.Equal(want) {
			t.Errorf("parseCardTime(%s) = %v, want %v", html, got, want)
		}
	}
}

func TestNextPageLink(t *testing.T) {
	html := `<nav><a class="wp-block-query-pagination-next" href="/category/artificial-intelligence/page/2/">Next</a></nav>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	next := nextPageLink(doc, "https://techcrunch.com/category/artificial-intelligence/")
	if next != "https://techcrunch.com/category/artificial-intelligence/page/2/" {
		t.Errorf("Unexpected next page link: %s", next)
	}

	empty, err := goquery.NewDocumentFromReader(strings.NewReader("<div></div>"))
	if err != nil {
		t.Fatal(err)
	}
	if link := nextPageLink(empty, "https://techcrunch.com/"); link != "" {
		t.Errorf("Expected no next link, got %s", link)
	}
}

func TestSnippetOf(t *testing.T) {
	long := strings.Repeat("word ", 200)
	snippet := snippetOf(long, 100)
	if len(snippet) > 104 {
		t.Errorf("Snippet too long: %d chars", len(snippet))
	}
	if !strings.HasSuffix(snippet, "…") {
		t.Error("Expected truncated snippet to end with ellipsis")
	}

	short := "just a few words"
	if snippetOf(short, 100) != short {
		t.Error("Expected short text to pass through unchanged")
	}
}

func TestTechCrunchFetch(t *testing.T) {
	now := time.Now().UTC()
	datetime := now.Add(-2 * time.Hour).Format(time.RFC3339)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<ul>"+techCrunchCard("A timely article", "https://techcrunch.com/2025/06/10/x/",
			"jane-doe", datetime, "Excerpt text.")+"</ul>")
	}))
	defer server.Close()

	adapter := NewTechCrunchAdapter(server.Client(), nil, "test-agent", false)
	adapter.listingURL = server.URL

	records, err := adapter.Fetch(context.Background(), NewWindow(now, 1))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 1 || records[0].Title != "A timely article" {
		t.Errorf("Unexpected records: %v", records)
	}
}

func TestTechCrunchFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewTechCrunchAdapter(server.Client(), nil, "test-agent", false)
	adapter.listingURL = server.URL

	_, err := adapter.Fetch(context.Background(), NewWindow(time.Now(), 1))
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}
