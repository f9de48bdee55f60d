package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DiskStore writes records as JSON files to dir, retaining at most
// keep files. The directory is created lazily on first Save.
type DiskStore struct {
	mu   sync.Mutex
	dir  string
	keep int // 0 means unlimited
}

// NewDiskStore creates a DiskStore rooted at dir that retains at most
// keep records (0 retains everything).
func NewDiskStore(dir string, keep int) *DiskStore {
	return &DiskStore{dir: dir, keep: keep}
}

// Save writes a record as a JSON file and prunes old records beyond
// the retention limit.
func (s *DiskStore) Save(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling run %s: %w", rec.ID, err)
	}
	path := filepath.Join(s.dir, rec.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run %s: %w", rec.ID, err)
	}
	return s.prune()
}

// Load reads a record from disk by run ID.
func (s *DiskStore) Load(runID string) (*Record, error) {
	path := filepath.Join(s.dir, runID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run %s: %w", runID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshalling run %s: %w", runID, err)
	}
	return &rec, nil
}

// Recent returns up to n records, most recent first.
func (s *DiskStore) Recent(n int) ([]*Record, error) {
	ids, err := s.idsByAge()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}

	recs := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Load(id)
		if err != nil {
			continue // skip corrupt entries
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// idsByAge lists run IDs on disk, most recently modified first.
func (s *DiskStore) idsByAge() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	type aged struct {
		id  string
		mod int64
	}
	var files []aged
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, aged{
			id:  strings.TrimSuffix(name, ".json"),
			mod: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod > files[j].mod })

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.id
	}
	return ids, nil
}

func (s *DiskStore) prune() error {
	if s.keep <= 0 {
		return nil
	}
	ids, err := s.idsByAge()
	if err != nil {
		return err
	}
	for _, id := range ids[min(s.keep, len(ids)):] {
		_ = os.Remove(filepath.Join(s.dir, id+".json"))
	}
	return nil
}
