package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// IgnoreFileNames lists the per-root ignore files the matcher loads.
var IgnoreFileNames = []string{".gitignore", ".iconignore"}

// Matcher decides which paths the importer skips while walking an icon tree.
// It combines default patterns, .gitignore and .iconignore rules, and -exclude patterns.
// Thread-safe: Reload() takes the write lock, the Should* methods take the read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	ignoreFiles      []gitignore.GitIgnore
	customPatterns   []string
	maxFileSizeBytes int64
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir          string
	CustomPatterns   []string
	MaxFileSizeBytes int64
}

// DefaultMaxFileSizeBytes caps icon files when no limit is configured.
const DefaultMaxFileSizeBytes = 4 * 1024 * 1024

// NewMatcher creates an ignore matcher rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:          options.RootDir,
		customPatterns:   options.CustomPatterns,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
	if matcher.maxFileSizeBytes <= 0 {
		matcher.maxFileSizeBytes = DefaultMaxFileSizeBytes
	}
	matcher.ignoreFiles = loadIgnoreFiles(options.RootDir)
	return matcher
}

// ShouldIgnore returns true if the path should be left out of the catalog.
// The path should be absolute or relative to the root directory.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if matchesDefaultPatterns(relativePath) {
		return true
	}

	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}

	// Relative() does not require the path to exist on disk
	for _, ignoreFile := range m.ignoreFiles {
		match := ignoreFile.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if AlwaysSkippedDirs[filepath.Base(absolutePath)] {
		return true
	}
	return m.ShouldIgnore(absolutePath)
}

// IsFileTooLarge returns true if the file exceeds the max file size limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return fileSize > m.maxFileSizeBytes
}

// MaxFileSizeBytes returns the configured maximum file size.
func (m *Matcher) MaxFileSizeBytes() int64 {
	return m.maxFileSizeBytes
}

// IsIgnoreFile reports whether the path names one of the loaded ignore files.
func IsIgnoreFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range IgnoreFileNames {
		if base == name {
			return true
		}
	}
	return false
}

// matchesDefaultPatterns checks the path against DefaultIgnorePatterns.
// Plain names match any path component, glob patterns match the base name.
func matchesDefaultPatterns(relativePath string) bool {
	parts := strings.Split(strings.ToLower(relativePath), "/")
	baseName := parts[len(parts)-1]

	for _, pattern := range DefaultIgnorePatterns {
		pattern = strings.ToLower(pattern)
		if !strings.ContainsAny(pattern, "*?[") {
			for _, part := range parts {
				if part == pattern {
					return true
				}
			}
			continue
		}
		if matched, err := filepath.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// matchesCustomPatterns checks the path against the -exclude patterns.
// Patterns are doublestar globs tried against the relative path and the base name.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads the ignore files from disk.
// Used when the watcher detects changes to them.
func (m *Matcher) Reload() {
	reloaded := loadIgnoreFiles(m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoreFiles = reloaded
}

func loadIgnoreFiles(rootDir string) []gitignore.GitIgnore {
	var loaded []gitignore.GitIgnore
	for _, name := range IgnoreFileNames {
		if gi := loadIgnoreFile(filepath.Join(rootDir, name), rootDir); gi != nil {
			loaded = append(loaded, gi)
		}
	}
	return loaded
}

// loadIgnoreFile reads an ignore file through an io.Reader so the handle is
// closed before returning (Windows keeps open files locked).
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
