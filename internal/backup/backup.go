// Package backup writes timestamped safety copies of the exported
// state envelope. Import takes one automatically before replacing
// state, so a bad import can be rolled back with
// 'reflex import <backup-file>'.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/luminathea/reflex/internal/engine"
)

// DefaultKeep is how many safety copies Prune retains by default.
const DefaultKeep = 5

// timeLayout makes backup file names sort chronologically.
const timeLayout = "20060102-150405"

const (
	filePrefix = "state-"
	fileSuffix = ".json"
)

// Info describes one backup file.
type Info struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Write stores the envelope as a new timestamped file under dir,
// creating the directory as needed. Returns the path written.
func Write(dir string, snap engine.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	data = append(data, '\n')

	stamp := time.Now().UTC().Format(timeLayout)
	path := filepath.Join(dir, filePrefix+stamp+fileSuffix)
	// A second backup within the same second must not clobber the first.
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, i, fileSuffix))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

// List returns the backups under dir, newest first. A missing directory
// lists as empty.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Path:      filepath.Join(dir, name),
			Size:      fi.Size(),
			CreatedAt: createdAt(name, fi),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// createdAt recovers the timestamp from the file name, falling back to
// the filesystem mtime for names that do not parse.
func createdAt(name string, fi os.FileInfo) time.Time {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	parts := strings.SplitN(stamp, "-", 3)
	if len(parts) >= 2 {
		if ts, err := time.Parse(timeLayout, parts[0]+"-"+parts[1]); err == nil {
			return ts
		}
	}
	return fi.ModTime()
}

// Prune removes all but the keep newest backups and returns how many
// were removed.
func Prune(dir string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	backups, err := List(dir)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", b.Path, err)
		}
		removed++
	}
	return removed, nil
}
