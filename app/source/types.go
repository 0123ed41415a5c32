package source

import (
	"context"
	"errors"
	"time"
)

// Kind identifies which platform a record came from.
type Kind string

const (
	KindReddit     Kind = "reddit"
	KindYouTube    Kind = "youtube"
	KindTechCrunch Kind = "techcrunch"
	KindMedium     Kind = "medium"
)

// AllKinds returns the known source kinds in digest section order.
func AllKinds() []Kind {
	return []Kind{KindTechCrunch, KindYouTube, KindReddit, KindMedium}
}

// ErrSourceUnavailable marks an upstream that is unreachable, rejected our
// credentials, or returned a shape we cannot parse. The aggregator catches
// it per adapter; it never crosses adapter boundaries.
var ErrSourceUnavailable = errors.New("source unavailable")

// Record is the normalized shape shared by all four sources. NaturalID is
// the source-provided identifier (post fullname, video id, article URL)
// and forms the dedup key together with Source.
type Record struct {
	Source      Kind
	NaturalID   string
	Title       string
	Author      string
	URL         string
	PublishedAt time.Time
	FetchedAt   time.Time
	Body        string
	Extra       map[string]string
}

// Adapter wraps one external source. Fetch performs the network or browser
// I/O and returns already-normalized records; it has no persistence side
// effects. Implementations honor ctx for cancellation and timeouts.
type Adapter interface {
	Kind() Kind
	Fetch(ctx context.Context, window Window) ([]Record, error)
}
