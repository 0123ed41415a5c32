package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ainews/app/source"
)

// ErrDuplicate reports that a record with the same natural ID is already
// stored for that source. The first stored record always wins.
var ErrDuplicate = errors.New("duplicate item")

// timeLayout is fixed-width UTC so stored timestamps compare correctly as
// strings and round-trip byte for byte.
const timeLayout = "2006-01-02 15:04:05.000000000"

var tableNames = map[source.Kind]string{
	source.KindReddit:     "reddit_posts",
	source.KindYouTube:    "youtube_videos",
	source.KindTechCrunch: "techcrunch_articles",
	source.KindMedium:     "medium_posts",
}

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func tableFor(kind source.Kind) (string, error) {
	table, ok := tableNames[kind]
	if !ok {
		return "", fmt.Errorf("unknown source kind: %s", kind)
	}
	return table, nil
}

// Exists reports whether a record with the given natural ID is already
// stored for the source.
func (r *ItemRepository) Exists(kind source.Kind, naturalID string) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE natural_id = ?", table)
	err = r.db.QueryRow(query, naturalID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return true, nil
}

// Insert stores a record. A primary key collision returns ErrDuplicate and
// leaves the stored record untouched.
func (r *ItemRepository) Insert(rec source.Record) error {
	table, err := tableFor(rec.Source)
	if err != nil {
		return err
	}

	extra, err := json.Marshal(orEmpty(rec.Extra))
	if err != nil {
		return fmt.Errorf("failed to encode extra fields: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (natural_id, title, author, url, published_at, fetched_at, body, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table)

	_, err = r.db.Exec(query,
		rec.NaturalID, rec.Title, rec.Author, rec.URL,
		encodeTime(rec.PublishedAt), encodeTime(rec.FetchedAt),
		rec.Body, string(extra))
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %s %s", ErrDuplicate, rec.Source, rec.NaturalID)
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// QueryRange returns the stored records of one source whose published_at
// falls within [from, to], newest first.
func (r *ItemRepository) QueryRange(kind source.Kind, from, to time.Time) ([]source.Record, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT natural_id, title, author, url, published_at, fetched_at, body, extra
		FROM %s
		WHERE published_at >= ? AND published_at <= ?
		ORDER BY published_at DESC`, table)

	rows, err := r.db.Query(query, encodeTime(from), encodeTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var records []source.Record
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountBySource returns the total number of stored records per source.
func (r *ItemRepository) CountBySource() (map[source.Kind]int, error) {
	counts := make(map[source.Kind]int, len(tableNames))

	for kind, table := range tableNames {
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := r.db.QueryRow(query).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[kind] = count
	}

	return counts, nil
}

func scanRecord(rows *sql.Rows, kind source.Kind) (source.Record, error) {
	var rec source.Record
	var publishedAt, fetchedAt, extra string

	err := rows.Scan(&rec.NaturalID, &rec.Title, &rec.Author, &rec.URL,
		&publishedAt, &fetchedAt, &rec.Body, &extra)
	if err != nil {
		return rec, fmt.Errorf("failed to scan item: %w", err)
	}

	rec.Source = kind
	if rec.PublishedAt, err = decodeTime(publishedAt); err != nil {
		return rec, err
	}
	if rec.FetchedAt, err = decodeTime(fetchedAt); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(extra), &rec.Extra); err != nil {
		return rec, fmt.Errorf("failed to decode extra fields: %w", err)
	}

	return rec, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func orEmpty(extra map[string]string) map[string]string {
	if extra == nil {
		return map[string]string{}
	}
	return extra
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
