package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/the1andoni/repowatch/models"
)

// SQLStore persists ledger records in a single table on SQLite (default)
// or MySQL. Same Store contract as the JSON file store: every Put is
// durable before it returns.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLite opens (or creates) the SQLite-backed store at path.
func NewSQLite(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite ledger: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	s := &SQLStore{db: db, driver: "sqlite"}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewMySQL opens the MySQL-backed store using dsn.
func NewMySQL(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql DSN is required when ledger driver is mysql")
	}
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql ledger: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	s := &SQLStore{db: db, driver: "mysql"}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS ledger_records (
		kind        VARCHAR(32)  NOT NULL,
		id          BIGINT       NOT NULL,
		title       TEXT         NOT NULL,
		author      VARCHAR(255) NOT NULL,
		url         TEXT         NOT NULL,
		created_at  VARCHAR(64)  NOT NULL DEFAULT '',
		notified_at VARCHAR(64)  NOT NULL DEFAULT '',
		PRIMARY KEY (kind, id)
	)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating ledger_records table: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (map[int64]Record, map[int64]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, id, title, author, url, created_at, notified_at FROM ledger_records`)
	if err != nil {
		return nil, nil, fmt.Errorf("loading ledger records: %w", err)
	}
	defer rows.Close()

	pulls := make(map[int64]Record)
	issues := make(map[int64]Record)
	for rows.Next() {
		var kind string
		var id int64
		var rec Record
		var notifiedAt string
		if err := rows.Scan(&kind, &id, &rec.Title, &rec.Author, &rec.URL, &rec.CreatedAt, &notifiedAt); err != nil {
			return nil, nil, fmt.Errorf("scanning ledger record: %w", err)
		}
		if notifiedAt != "" {
			if t, err := time.Parse(time.RFC3339, notifiedAt); err == nil {
				rec.NotifiedAt = t
			}
		}
		if models.ItemKind(kind) == models.KindIssue {
			issues[id] = rec
		} else {
			pulls[id] = rec
		}
	}
	return pulls, issues, rows.Err()
}

func (s *SQLStore) Put(ctx context.Context, kind models.ItemKind, id int64, rec Record) error {
	notifiedAt := ""
	if !rec.NotifiedAt.IsZero() {
		notifiedAt = rec.NotifiedAt.UTC().Format(time.RFC3339)
	}

	var query string
	if s.driver == "mysql" {
		query = `INSERT INTO ledger_records (kind, id, title, author, url, created_at, notified_at)
		         VALUES (?, ?, ?, ?, ?, ?, ?)
		         ON DUPLICATE KEY UPDATE title = VALUES(title), author = VALUES(author),
		           url = VALUES(url), created_at = VALUES(created_at), notified_at = VALUES(notified_at)`
	} else {
		query = `INSERT INTO ledger_records (kind, id, title, author, url, created_at, notified_at)
		         VALUES (?, ?, ?, ?, ?, ?, ?)
		         ON CONFLICT (kind, id) DO UPDATE SET title = excluded.title, author = excluded.author,
		           url = excluded.url, created_at = excluded.created_at, notified_at = excluded.notified_at`
	}
	if _, err := s.db.ExecContext(ctx, query,
		string(kind), id, rec.Title, rec.Author, rec.URL, rec.CreatedAt, notifiedAt); err != nil {
		return fmt.Errorf("upserting ledger record %s/%d: %w", kind, id, err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
