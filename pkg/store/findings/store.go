package findings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/store"
)

// ErrMalformed marks a findings file that cannot drive a remediation run.
// This is fatal to the run, unlike per-resource classification errors.
var ErrMalformed = errors.New("malformed findings file")

// Load reads and validates a findings file.
func Load(path string) (store.FindingsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.FindingsFile{}, fmt.Errorf("failed to read findings file: %w", err)
	}

	var file store.FindingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return store.FindingsFile{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if file.Findings == nil {
		return store.FindingsFile{}, fmt.Errorf("%w: missing findings list", ErrMalformed)
	}
	for i, f := range file.Findings {
		if f.ResourceID == "" || f.Recommendation == "" {
			return store.FindingsFile{}, fmt.Errorf(
				"%w: finding %d missing resource_id or recommendation", ErrMalformed, i)
		}
	}
	return file, nil
}

// Save writes a findings file, creating parent directories as needed.
func Save(path string, file store.FindingsFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write findings file: %w", err)
	}
	return nil
}

// SaveTimestamped writes the findings file under dir with a timestamped name
// and returns its path.
func SaveTimestamped(dir string, file store.FindingsFile) (string, error) {
	name := fmt.Sprintf("findings_%s.json", time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := Save(path, file); err != nil {
		return "", err
	}
	return path, nil
}

// Latest returns the newest findings file in dir, or empty string when none
// exist.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "findings_*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
