package database

import (
	"time"

	"ainews/app/source"
)

// ItemStore is the repository surface the pipeline and the digest server
// consume.
type ItemStore interface {
	Exists(kind source.Kind, naturalID string) (bool, error)
	Insert(rec source.Record) error
	QueryRange(kind source.Kind, from, to time.Time) ([]source.Record, error)
	CountBySource() (map[source.Kind]int, error)
}
