package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
)

const techCrunchListingURL = "https://techcrunch.com/category/artificial-intelligence/"

var (
	authorSlugExpr   = regexp.MustCompile(`/author/(.+?)/`)
	relativeAgeDigit = regexp.MustCompile(`\d+`)
)

// TechCrunchAdapter scrapes the AI category listing. Pagination follows the
// "load more" next-page link until a page holds only posts older than the
// window. When a listing card has no excerpt the article page itself is
// fetched and run through readability.
type TechCrunchAdapter struct {
	client      *http.Client
	listingURL  string
	maxPages    int
	gate        *LanguageGate
	extractBody bool
	userAgent   string
}

func NewTechCrunchAdapter(client *http.Client, gate *LanguageGate, userAgent string, extractBody bool) *TechCrunchAdapter {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TechCrunchAdapter{
		client:      client,
		listingURL:  techCrunchListingURL,
		maxPages:    5,
		gate:        gate,
		extractBody: extractBody,
		userAgent:   userAgent,
	}
}

func (a *TechCrunchAdapter) Kind() Kind {
	return KindTechCrunch
}

func (a *TechCrunchAdapter) Fetch(ctx context.Context, window Window) ([]Record, error) {
	fetchedAt := time.Now().UTC()
	pageURL := a.listingURL
	seen := make(map[string]struct{})
	var records []Record

	for page := 0; page < a.maxPages && pageURL != ""; page++ {
		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		pageRecords, anyInWindow := a.parseListing(doc, window, fetchedAt)
		for _, rec := range pageRecords {
			if _, dup := seen[rec.NaturalID]; dup {
				continue
			}
			seen[rec.NaturalID] = struct{}{}

			if rec.Body == "" && a.extractBody {
				rec.Body = a.extractArticleBody(ctx, rec.URL)
			}
			records = append(records, rec)
		}

		// Once a whole page is out of window, older pages will be too.
		if !anyInWindow && page > 0 {
			break
		}
		pageURL = nextPageLink(doc, pageURL)
	}

	return records, nil
}

func (a *TechCrunchAdapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("techcrunch: %w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("techcrunch: %w: listing returned %s", ErrSourceUnavailable, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("techcrunch: %w: parse document: %v", ErrSourceUnavailable, err)
	}

	return doc, nil
}

// parseListing extracts all in-window, target-language cards from one
// listing page. The second return reports whether any card on the page was
// still inside the window, which drives pagination.
func (a *TechCrunchAdapter) parseListing(doc *goquery.Document, window Window, fetchedAt time.Time) ([]Record, bool) {
	var records []Record
	anyInWindow := false

	doc.Find("div.wp-block-tc23-post-picker, li.wp-block-post").Each(func(_ int, card *goquery.Selection) {
		rec, ok := a.parseCard(card, fetchedAt)
		if !ok {
			return
		}
		if !window.Contains(rec.PublishedAt) {
			return
		}
		anyInWindow = true
		if a.gate != nil && !a.gate.Allows(rec.Title+" "+rec.Body) {
			return
		}
		records = append(records, rec)
	})

	return records, anyInWindow
}

func (a *TechCrunchAdapter) parseCard(card *goquery.Selection, fetchedAt time.Time) (Record, bool) {
	titleLink := card.Find("h2.wp-block-post-title a, h3.wp-block-post-title a").First()
	title := strings.TrimSpace(titleLink.Text())
	link, _ := titleLink.Attr("href")
	if title == "" || link == "" {
		return Record{}, false
	}

	author := ""
	if authorHref, ok := card.Find("div.wp-block-tc23-author-card-name a").First().Attr("href"); ok {
		if m := authorSlugExpr.FindStringSubmatch(authorHref); m != nil {
			author = strings.ReplaceAll(m[1], "-", " ")
		}
	}
	if author == "" {
		author = strings.TrimSpace(card.Find("a[href*='/author/']").First().Text())
	}

	snippet := strings.TrimSpace(card.Find("p.wp-block-post-excerpt__excerpt").First().Text())

	return Record{
		Source:      KindTechCrunch,
		NaturalID:   link,
		Title:       title,
		Author:      author,
		URL:         link,
		PublishedAt: parseCardTime(card, fetchedAt),
		FetchedAt:   fetchedAt,
		Body:        snippet,
	}, true
}

// parseCardTime prefers the machine-readable datetime attribute and falls
// back to the "N hours/days ago" label. Unparseable dates stay zero so the
// window predicate rejects them.
func parseCardTime(card *goquery.Selection, now time.Time) time.Time {
	if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
		if t, err := dateparse.ParseAny(datetime); err == nil {
			return t.UTC()
		}
	}

	label := strings.ToLower(strings.TrimSpace(card.Find("time.wp-block-tc23-post-time-ago, time").First().Text()))
	if label == "" {
		return time.Time{}
	}
	switch {
	case strings.Contains(label, "min"), strings.Contains(label, "hour"):
		return now
	case strings.Contains(label, "day"):
		if m := relativeAgeDigit.FindString(label); m != "" {
			days, _ := strconv.Atoi(m)
			return now.AddDate(0, 0, -days)
		}
	}
	return time.Time{}
}

func nextPageLink(doc *goquery.Document, current string) string {
	href, ok := doc.Find("a.wp-block-query-pagination-next, a[rel='next']").First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	base, err := url.Parse(current)
	if err != nil {
		return href
	}
	next, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(next).String()
}

// extractArticleBody fetches the article page and distills it with
// readability. Best effort: any failure leaves the body empty.
func (a *TechCrunchAdapter) extractArticleBody(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	parsed, err := url.Parse(articleURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return ""
	}

	return snippetOf(article.TextContent, 500)
}

func snippetOf(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return text[:cut] + "…"
}
