// Package fetch stages dataset files into a local cache directory so
// repeated runs reuse one copy until it goes stale.
package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/utils"
)

// DefaultMaxAge is how long a cached copy stays fresh.
const DefaultMaxAge = 24 * time.Hour

// Retriever copies source files into Dir and reuses them while fresh.
type Retriever struct {
	Dir    string
	MaxAge time.Duration
	// Progress receives staged one-line updates; nil silences them.
	Progress io.Writer
}

// Fetch returns the cached path for source, copying it in when the cache
// holds no fresh copy. Freshness is measured from the time of the copy, so
// a source file older than MaxAge still caches for the full window. Force
// recopies unconditionally.
func (r *Retriever) Fetch(source string, force bool) (string, error) {
	progress := r.Progress
	if progress == nil {
		progress = io.Discard
	}
	maxAge := r.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	cached := filepath.Join(r.Dir, filepath.Base(source))
	if !force && fresh(cached, maxAge) {
		fmt.Fprintf(progress, "✓ Using cached copy: %s\n", cached)
		return cached, nil
	}

	fmt.Fprintf(progress, "→ Retrieving data from %s\n", source)
	data, err := os.ReadFile(source)
	if err != nil {
		return "", &dataset.NotFoundError{Path: source, Err: err}
	}
	if err := utils.EnsureDir(r.Dir); err != nil {
		return "", err
	}
	if err := utils.SafeWriteFile(cached, data); err != nil {
		return "", err
	}
	fmt.Fprintf(progress, "✓ Data saved to %s\n", cached)
	return cached, nil
}

// Clear removes every file directly under the cache directory. A missing
// directory is not an error.
func (r *Retriever) Clear() error {
	progress := r.Progress
	if progress == nil {
		progress = io.Discard
	}

	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(r.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintf(progress, "✓ Removed cached file: %s\n", path)
	}
	return nil
}

func fresh(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < maxAge
}
