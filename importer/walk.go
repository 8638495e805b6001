package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/imagetype"
)

// PathMatcher decides which paths a walk skips.
type PathMatcher interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
	IsFileTooLarge(fileSize int64) bool
}

// Walk enumerates the supported icons under rootDir, skipping ignored
// directories, ignored files and files over the size limit. Files are
// returned in lexical path order with lazy file-backed sources.
// Unreadable entries are skipped; only a missing or unreadable root is an error.
func Walk(rootDir string, matcher PathMatcher) ([]File, error) {
	rootInfo, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("reading root %s: %w", rootDir, err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", rootDir)
	}

	var files []File
	filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != rootDir && matcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !imagetype.IsSupported(path) || matcher.ShouldIgnore(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if matcher.IsFileTooLarge(info.Size()) {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return nil
		}
		files = append(files, File{
			RelativePath: filepath.ToSlash(relPath),
			Source:       blobref.FileSource{Path: path},
			SizeBytes:    info.Size(),
			ModTime:      info.ModTime(),
		})
		return nil
	})

	return files, nil
}
