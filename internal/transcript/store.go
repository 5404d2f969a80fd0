package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/webhook-fulfillment/internal/db"
)

// ErrNotFound is returned when no transcript has the requested ID.
var ErrNotFound = errors.New("transcript not found")

// Store persists transcript entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new entry. A missing ID is generated and a zero Timestamp
// is set to now. The stored entry is returned.
func (s *Store) Log(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Second)

	var errText sql.NullString
	if entry.Error != "" {
		errText = sql.NullString{String: entry.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts (
			id, timestamp, protocol_version, session, action, intent,
			source, query, status, outcome, error, duration_ms,
			request, response
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.DateTime),
		entry.Version,
		entry.Session,
		entry.Action,
		entry.Intent,
		entry.Source,
		entry.Query,
		entry.Status,
		string(entry.Outcome),
		errText,
		entry.DurationMS,
		string(entry.Request),
		string(entry.Response),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting transcript: %w", err)
	}
	return entry, nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	Session string
	Action  string
	Source  string
	Outcome Outcome
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}

const selectColumns = `SELECT id, timestamp, protocol_version, session, action, intent,
	source, query, status, outcome, error, duration_ms, request, response
	FROM transcripts`

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Session != "" {
		clauses = append(clauses, "session = ?")
		args = append(args, filter.Session)
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transcripts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transcripts WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old transcripts: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e                 Entry
		ts                string
		outcome           string
		errText           sql.NullString
		request, response string
	)

	err := sc.Scan(
		&e.ID, &ts, &e.Version, &e.Session, &e.Action, &e.Intent,
		&e.Source, &e.Query, &e.Status, &outcome, &errText, &e.DurationMS,
		&request, &response,
	)
	if err != nil {
		return nil, err
	}

	e.Outcome = Outcome(outcome)
	if errText.Valid {
		e.Error = errText.String
	}
	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.Timestamp = t
	}
	if request != "" {
		e.Request = []byte(request)
	}
	if response != "" {
		e.Response = []byte(response)
	}
	return &e, nil
}
