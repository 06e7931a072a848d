package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/cwbudde/algo-subarray/array"
)

// Entry is one saved configuration.
type Entry struct {
	ID          string        `json:"id"`
	CreatedDate time.Time     `json:"created_date"`
	Config      *array.Config `json:"config"`
}

// ErrNotFound is returned by Get and Delete for unknown ids.
var ErrNotFound = errors.New("preset: configuration not found")

var idPattern = regexp.MustCompile(`^local_[0-9]+$`)

// Store is a directory of saved configurations, one JSON file per entry.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore opens (and creates if needed) a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save stores a copy of cfg under a new "local_<unix-nanos>" id.
func (s *Store) Save(cfg *array.Config) (*Entry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	now := s.now()
	nanos := now.UnixNano()
	id := "local_" + strconv.FormatInt(nanos, 10)
	for {
		if _, err := os.Stat(s.path(id)); errors.Is(err, os.ErrNotExist) {
			break
		}
		nanos++
		id = "local_" + strconv.FormatInt(nanos, 10)
	}

	e := &Entry{ID: id, CreatedDate: now.UTC(), Config: cfg.Clone()}
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.path(id), b, 0o644); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (*Entry, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("invalid id %q", id)
	}
	b, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return &e, nil
}

// List returns every entry, oldest first. Unreadable files are skipped.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(files))
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		e, err := s.Get(name[:len(name)-len(".json")])
		if err != nil {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.Before(out[j].CreatedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes the entry with the given id.
func (s *Store) Delete(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
