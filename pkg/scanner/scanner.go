// Package scanner finds source files for the CLI. The engine itself never
// touches the filesystem; the scanner feeds it file contents.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vitruves/loupe/pkg/config"
)

// clikeExts are extensions lexed with the C-like keyword table. Everything
// else in sourceExts falls back to the generic family.
var clikeExts = map[string]bool{
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cc": true,
	".hh": true, ".cxx": true, ".hxx": true, ".java": true, ".cs": true,
}

// sourceExts are the extensions considered source files.
var sourceExts = map[string]bool{
	".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cc": true,
	".hh": true, ".cxx": true, ".hxx": true, ".java": true, ".cs": true,
	".go": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".py": true, ".rb": true, ".rs": true, ".php": true, ".swift": true,
	".kt": true, ".scala": true, ".m": true, ".mm": true,
}

// Scanner finds source files in a directory tree.
type Scanner struct {
	config *config.Config
}

// NewScanner creates a file scanner. A nil config means defaults.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// FamilyHint maps a file path to the lexical family hint for the engine.
func FamilyHint(path string) string {
	if clikeExts[strings.ToLower(filepath.Ext(path))] {
		return "clike"
	}
	return "generic"
}

// IsSourceFile reports whether the path looks like analyzable source.
func IsSourceFile(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// ScanDir recursively collects source files under root, honoring the
// config's exclusion rules. Unreadable entries are skipped, not fatal.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		if d.IsDir() {
			if relPath != "." && s.config.ShouldExclude(relPath+string(filepath.Separator)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) || s.config.ShouldExclude(relPath) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}
