// Package history persists command run records so recent executions
// can be reviewed after the fact.
package history

import (
	"os"
	"path/filepath"
	"time"

	"github.com/deixis/cmdexec/internal/runner"
)

// Store persists and retrieves run records.
type Store interface {
	Save(rec *Record) error
	Load(runID string) (*Record, error)
	Recent(n int) ([]*Record, error)
}

// Record is one archived command execution.
type Record struct {
	ID   string         `json:"id"`
	Time time.Time      `json:"time"`
	Run  *runner.Result `json:"run"`
}

// NewRecord wraps a runner result for storage, stamped with the
// current time.
func NewRecord(res *runner.Result) *Record {
	return &Record{
		ID:   res.RunID,
		Time: time.Now().UTC(),
		Run:  res,
	}
}

// DefaultDir returns the per-user directory for archived runs.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cmdexec", "runs"), nil
}
