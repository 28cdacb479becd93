package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultResultsDir is used when no output directory is configured
const DefaultResultsDir = "results"

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns <baseDir>/<SYMBOL>_<interval>
func (p *DefaultPathManager) GetDefaultOutputDir(baseDir, symbol, interval string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	i := strings.ToLower(strings.TrimSpace(interval))
	if s == "" {
		s = "UNKNOWN"
	}
	if i == "" {
		i = "unknown"
	}
	if strings.TrimSpace(baseDir) == "" {
		baseDir = DefaultResultsDir
	}

	return filepath.Join(baseDir, fmt.Sprintf("%s_%s", s, i))
}

// EnsureDirectoryExists creates the parent directory of path if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// DefaultOutputDir is a package-level convenience function
func DefaultOutputDir(baseDir, symbol, interval string) string {
	return NewDefaultPathManager().GetDefaultOutputDir(baseDir, symbol, interval)
}
