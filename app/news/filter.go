package news

import (
	"log/slog"
	"strings"

	"ainews/app/config"
	"ainews/app/source"
)

// Filter decides whether a fetched record is admitted into the store. A
// record passes only when its publish time is inside the window AND it
// matches the configured topics for its source. Both checks are applied
// even when an adapter already pre-filtered upstream.
type Filter struct {
	window  source.Window
	sources *config.Sources
}

func NewFilter(window source.Window, sources *config.Sources) *Filter {
	return &Filter{window: window, sources: sources}
}

// Match reports whether rec is admitted, with a reject reason for logging.
func (f *Filter) Match(rec source.Record) (bool, string) {
	if !f.window.Contains(rec.PublishedAt) {
		return false, "out of window"
	}
	if !f.topicMatch(rec) {
		return false, "off topic"
	}
	return true, ""
}

// Result carries the admitted records of one batch plus reject counts.
type Result struct {
	Admitted    []source.Record
	OutOfWindow int
	OffTopic    int
}

// Run filters a fetched batch down to the admitted records.
func (f *Filter) Run(records []source.Record) Result {
	result := Result{Admitted: make([]source.Record, 0, len(records))}

	for _, rec := range records {
		ok, reason := f.Match(rec)
		if !ok {
			slog.Debug("Record rejected", "source", rec.Source, "id", rec.NaturalID, "reason", reason)
			if reason == "out of window" {
				result.OutOfWindow++
			} else {
				result.OffTopic++
			}
			continue
		}
		result.Admitted = append(result.Admitted, rec)
	}

	return result
}

func (f *Filter) topicMatch(rec source.Record) bool {
	switch rec.Source {
	case source.KindReddit:
		return containsFold(f.sources.Reddit.Channels, rec.Extra["subreddit"])
	case source.KindYouTube:
		return anyTopicIn(f.sources.YouTube.Topics, rec.Extra["topic"], rec.Title)
	case source.KindTechCrunch:
		return anyTopicIn(f.sources.TechCrunch.Topics, rec.Title, rec.Body)
	case source.KindMedium:
		topics := append(append([]string{}, f.sources.Medium.Topics...), f.sources.Medium.RelatedTags...)
		return anyTopicIn(topics, rec.Extra["topic"], rec.Title, rec.Body)
	}
	return false
}

// containsFold reports whether candidates holds value, case-insensitively.
func containsFold(candidates []string, value string) bool {
	for _, c := range candidates {
		if strings.EqualFold(c, value) {
			return true
		}
	}
	return false
}

// anyTopicIn reports whether any topic appears as a case-insensitive
// substring of any of the given texts. Hyphenated tags like
// "large-language-models" also match their spaced form.
func anyTopicIn(topics []string, texts ...string) bool {
	var haystack strings.Builder
	for _, t := range texts {
		haystack.WriteString(strings.ToLower(t))
		haystack.WriteByte('\n')
	}
	joined := haystack.String()

	for _, topic := range topics {
		topic = strings.ToLower(topic)
		if topic == "" {
			continue
		}
		if strings.Contains(joined, topic) {
			return true
		}
		if spaced := strings.ReplaceAll(topic, "-", " "); spaced != topic && strings.Contains(joined, spaced) {
			return true
		}
	}
	return false
}
