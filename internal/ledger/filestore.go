package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/the1andoni/repowatch/models"
)

const (
	pullsFile  = "sent_pull_requests.json"
	issuesFile = "sent_issues.json"
)

// FileStore persists the ledger as two JSON documents, one per kind,
// keyed by the string form of the platform id. Each mutation rewrites the
// whole document; writes are serialized by the single-writer loop, so a
// plain last-writer-wins overwrite is sufficient.
type FileStore struct {
	dir string

	mu     sync.Mutex
	pulls  map[int64]Record
	issues map[int64]Record
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating ledger directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(ctx context.Context) (map[int64]Record, map[int64]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pulls, err := readDocument(filepath.Join(s.dir, pullsFile))
	if err != nil {
		return nil, nil, err
	}
	issues, err := readDocument(filepath.Join(s.dir, issuesFile))
	if err != nil {
		return nil, nil, err
	}

	s.pulls = pulls
	s.issues = issues
	return copyRecords(pulls), copyRecords(issues), nil
}

func (s *FileStore) Put(ctx context.Context, kind models.ItemKind, id int64, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pulls == nil || s.issues == nil {
		// Put before Load; recover the on-disk state first.
		var err error
		if s.pulls, err = readDocument(filepath.Join(s.dir, pullsFile)); err != nil {
			return err
		}
		if s.issues, err = readDocument(filepath.Join(s.dir, issuesFile)); err != nil {
			return err
		}
	}

	doc, file := s.pulls, pullsFile
	if kind == models.KindIssue {
		doc, file = s.issues, issuesFile
	}

	prev, existed := doc[id]
	doc[id] = rec
	if err := writeDocument(filepath.Join(s.dir, file), doc); err != nil {
		// Keep memory consistent with disk.
		if existed {
			doc[id] = prev
		} else {
			delete(doc, id)
		}
		return err
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// readDocument loads one id→record JSON document. A missing file reads as
// an empty map.
func readDocument(path string) (map[int64]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[int64]Record), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	out := make(map[int64]Record, len(raw))
	for key, rec := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: invalid id %q", path, key)
		}
		out[id] = rec
	}
	return out, nil
}

// writeDocument rewrites the whole document in place.
func writeDocument(path string, records map[int64]Record) error {
	raw := make(map[string]Record, len(records))
	for id, rec := range records {
		raw[strconv.FormatInt(id, 10)] = rec
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func copyRecords(in map[int64]Record) map[int64]Record {
	out := make(map[int64]Record, len(in))
	for id, rec := range in {
		out[id] = rec
	}
	return out
}
