package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	redditAPIBase  = "https://oauth.reddit.com"
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"
	redditLinkBase = "https://www.reddit.com"
)

// RedditConfig carries the API credentials and the subreddits to page.
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Channels     []string
	Timeout      time.Duration // per-request; zero means 30s
}

// RedditAdapter pages the /new listing of each configured subreddit until
// it reaches posts older than the window. Authentication is the OAuth2
// client-credentials flow against Reddit's token endpoint.
type RedditAdapter struct {
	cfg       RedditConfig
	client    *http.Client
	apiBase   string
	tokenURL  string
	pageLimit int
	maxPages  int
}

// NewRedditAdapter builds the adapter. A nil client defers OAuth client
// construction to the first Fetch; tests inject their own.
func NewRedditAdapter(cfg RedditConfig, client *http.Client) *RedditAdapter {
	return &RedditAdapter{
		cfg:       cfg,
		client:    client,
		apiBase:   redditAPIBase,
		tokenURL:  redditTokenURL,
		pageLimit: 100,
		maxPages:  10,
	}
}

func (a *RedditAdapter) Kind() Kind {
	return KindReddit
}

func (a *RedditAdapter) Fetch(ctx context.Context, window Window) ([]Record, error) {
	client, err := a.httpClient(ctx)
	if err != nil {
		return nil, err
	}

	fetchedAt := time.Now().UTC()
	var records []Record
	for _, channel := range a.cfg.Channels {
		posts, err := a.fetchChannel(ctx, client, channel, window)
		if err != nil {
			return nil, fmt.Errorf("r/%s: %w", channel, err)
		}
		for _, post := range posts {
			records = append(records, a.normalize(post, fetchedAt))
		}
	}

	return records, nil
}

func (a *RedditAdapter) httpClient(ctx context.Context) (*http.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.cfg.ClientID == "" || a.cfg.ClientSecret == "" || a.cfg.UserAgent == "" {
		return nil, fmt.Errorf("reddit: missing API credentials: %w", ErrSourceUnavailable)
	}

	conf := &clientcredentials.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		TokenURL:     a.tokenURL,
	}

	timeout := a.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Reddit rejects requests without a descriptive User-Agent, including
	// the token request itself.
	base := &http.Client{
		Timeout:   timeout,
		Transport: userAgentTransport{agent: a.cfg.UserAgent, next: http.DefaultTransport},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	a.client = conf.Client(ctx)

	return a.client, nil
}

func (a *RedditAdapter) fetchChannel(ctx context.Context, client *http.Client, channel string, window Window) ([]redditPost, error) {
	var posts []redditPost
	after := ""

	for page := 0; page < a.maxPages; page++ {
		listing, err := a.fetchListing(ctx, client, channel, after)
		if err != nil {
			return nil, err
		}
		if len(listing.Data.Children) == 0 {
			break
		}

		reachedOlder := false
		for _, child := range listing.Data.Children {
			created := time.Unix(int64(child.Data.CreatedUTC), 0).UTC()
			if created.Before(window.Start) {
				reachedOlder = true
				break
			}
			posts = append(posts, child.Data)
		}

		if reachedOlder || listing.Data.After == "" {
			break
		}
		after = listing.Data.After
	}

	return posts, nil
}

func (a *RedditAdapter) fetchListing(ctx context.Context, client *http.Client, channel, after string) (*redditListing, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(a.pageLimit))
	query.Set("raw_json", "1")
	if after != "" {
		query.Set("after", after)
	}
	listingURL := fmt.Sprintf("%s/r/%s/new?%s", a.apiBase, url.PathEscape(channel), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", a.cfg.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: listing returned %s", ErrSourceUnavailable, resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %v", ErrSourceUnavailable, err)
	}

	return &listing, nil
}

func (a *RedditAdapter) normalize(post redditPost, fetchedAt time.Time) Record {
	link := redditLinkBase + post.Permalink
	body := link
	if post.IsSelf {
		body = post.Selftext
	}

	author := post.Author
	if author == "" {
		author = "[deleted]"
	}

	return Record{
		Source:      KindReddit,
		NaturalID:   post.Name,
		Title:       post.Title,
		Author:      author,
		URL:         link,
		PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
		FetchedAt:   fetchedAt,
		Body:        body,
		Extra: map[string]string{
			"subreddit":    post.Subreddit,
			"score":        strconv.Itoa(post.Score),
			"num_comments": strconv.Itoa(post.NumComments),
			"is_self":      strconv.FormatBool(post.IsSelf),
		},
	}
}

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Name        string  `json:"name"` // fullname, e.g. t3_abc123
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	Selftext    string  `json:"selftext"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	IsSelf      bool    `json:"is_self"`
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}
