package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/store"
)

// SaveTimestamped persists an execution ledger under dir with a timestamped
// name and returns its path.
func SaveTimestamped(dir string, file store.LedgerFile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	name := fmt.Sprintf("execution_%s.json", time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write ledger file: %w", err)
	}
	return path, nil
}

// Load reads a persisted execution ledger.
func Load(path string) (store.LedgerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.LedgerFile{}, fmt.Errorf("failed to read ledger file: %w", err)
	}
	var file store.LedgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return store.LedgerFile{}, fmt.Errorf("failed to parse ledger file: %w", err)
	}
	return file, nil
}

// Latest returns the newest ledger file in dir, or empty string when none
// exist.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "execution_*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
