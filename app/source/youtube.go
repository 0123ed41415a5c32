package source

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const youtubeWatchBase = "https://www.youtube.com/watch?v="

// YouTubeAdapter runs one date-ordered search per configured topic through
// the YouTube Data API and merges the results, deduplicating by video id
// within the run (the same video routinely matches several search terms).
type YouTubeAdapter struct {
	apiKey     string
	topics     []string
	maxPages   int
	maxResults int64
	opts       []option.ClientOption // test hook: endpoint/client overrides
}

func NewYouTubeAdapter(apiKey string, topics []string) *YouTubeAdapter {
	return &YouTubeAdapter{
		apiKey:     apiKey,
		topics:     topics,
		maxPages:   3,
		maxResults: 50,
	}
}

func (a *YouTubeAdapter) Kind() Kind {
	return KindYouTube
}

func (a *YouTubeAdapter) Fetch(ctx context.Context, window Window) ([]Record, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("youtube: missing API key: %w", ErrSourceUnavailable)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(a.apiKey)}, a.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: %w: %v", ErrSourceUnavailable, err)
	}

	fetchedAt := time.Now().UTC()
	seen := make(map[string]struct{})
	var records []Record

	for _, topic := range a.topics {
		items, err := a.searchTopic(ctx, svc, topic, window)
		if err != nil {
			return nil, fmt.Errorf("youtube search %q: %w", topic, err)
		}
		for _, item := range items {
			rec, ok := normalizeVideo(item, topic, fetchedAt)
			if !ok {
				continue
			}
			if _, dup := seen[rec.NaturalID]; dup {
				continue
			}
			seen[rec.NaturalID] = struct{}{}
			records = append(records, rec)
		}
	}

	return records, nil
}

func (a *YouTubeAdapter) searchTopic(ctx context.Context, svc *youtube.Service, topic string, window Window) ([]*youtube.SearchResult, error) {
	var items []*youtube.SearchResult
	pageToken := ""

	for page := 0; page < a.maxPages; page++ {
		call := svc.Search.List([]string{"id", "snippet"}).
			Q(topic).
			Type("video").
			Order("date").
			RelevanceLanguage("en").
			MaxResults(a.maxResults).
			PublishedAfter(window.Start.UTC().Format(time.RFC3339)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		items = append(items, resp.Items...)
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return items, nil
}

// normalizeVideo maps one search result to a Record. Results without a
// video id or parseable publish time are dropped.
func normalizeVideo(item *youtube.SearchResult, topic string, fetchedAt time.Time) (Record, bool) {
	if item == nil || item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
		return Record{}, false
	}

	publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return Record{}, false
	}

	videoID := item.Id.VideoId
	return Record{
		Source:      KindYouTube,
		NaturalID:   videoID,
		Title:       item.Snippet.Title,
		Author:      item.Snippet.ChannelTitle,
		URL:         youtubeWatchBase + videoID,
		PublishedAt: publishedAt.UTC(),
		FetchedAt:   fetchedAt,
		Body:        item.Snippet.Description,
		Extra: map[string]string{
			"channel": item.Snippet.ChannelTitle,
			"topic":   topic,
		},
	}, true
}
