package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sdn-controller/pkg/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS events(
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	kind TEXT NOT NULL,
	flow_id INTEGER,
	ts INTEGER NOT NULL,
	body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_flow ON events(flow_id);`

// SQLiteStore appends events to a local SQLite file. The file is a journal
// for operators; it is not replayed on start.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite mkdir: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite init schema: %w", err)
	}
	return &SQLiteStore{db: db, timeout: 2 * time.Second}, nil
}

func (s *SQLiteStore) AppendEvent(e model.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	var flowID sql.NullInt64
	if e.FlowID != 0 {
		flowID = sql.NullInt64{Int64: e.FlowID, Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO events(id, kind, flow_id, ts, body) VALUES(?,?,?,?,?)`,
		e.ID, string(e.Kind), flowID, e.Timestamp.UnixNano(), string(body))
	return err
}

func (s *SQLiteStore) ListEvents(limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(`SELECT body FROM (SELECT seq, body FROM events ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC`, limit)
}

func (s *SQLiteStore) FlowHistory(flowID int64, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(`SELECT body FROM (SELECT seq, body FROM events WHERE flow_id = ? ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC`, flowID, limit)
}

func (s *SQLiteStore) query(q string, args ...interface{}) ([]model.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var e model.Event
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Ping reports readiness for health endpoints.
func (s *SQLiteStore) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
