package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Matcher_DefaultPatterns_NodeModules(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	nodePath := filepath.Join(tmpDir, "node_modules", "pkg", "logo.svg")
	if !matcher.ShouldIgnore(nodePath) {
		t.Error("expected node_modules icons to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_OSFiles(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	for _, name := range []string{"Thumbs.db", ".DS_Store", "._a.png"} {
		if !matcher.ShouldIgnore(filepath.Join(tmpDir, "icons", name)) {
			t.Errorf("expected %s to be ignored", name)
		}
	}
}

func Test_Matcher_DefaultPatterns_AllowsImages(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	for _, name := range []string{"a.png", "b.svg", "c.ico", "d.jpg", "e.jpeg"} {
		if matcher.ShouldIgnore(filepath.Join(tmpDir, "icons", name)) {
			t.Errorf("expected %s to NOT be ignored", name)
		}
	}
}

func Test_Matcher_GitignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.tmp.png\ngenerated/\n"), 0644)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "logo.tmp.png")) {
		t.Error("expected .gitignore pattern to ignore *.tmp.png")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "logo.png")) {
		t.Error("expected logo.png to NOT be ignored by .gitignore")
	}
}

func Test_Matcher_IconignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".iconignore"), []byte("drafts/\n*-old.svg\n"), 0644)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "arrow-old.svg")) {
		t.Error("expected .iconignore pattern to ignore *-old.svg")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "arrow.svg")) {
		t.Error("expected arrow.svg to NOT be ignored")
	}
}

func Test_Matcher_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	target := filepath.Join(tmpDir, "skip.png")
	if matcher.ShouldIgnore(target) {
		t.Fatal("expected skip.png to be allowed before reload")
	}

	os.WriteFile(filepath.Join(tmpDir, ".iconignore"), []byte("skip.png\n"), 0644)
	matcher.Reload()

	if !matcher.ShouldIgnore(target) {
		t.Error("expected skip.png to be ignored after reload")
	}
}

func Test_Matcher_CustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{
		RootDir:        tmpDir,
		CustomPatterns: []string{"*.ico", "legacy/**"},
	})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "favicon.ico")) {
		t.Error("expected custom pattern to ignore *.ico files")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "legacy", "set", "a.png")) {
		t.Error("expected custom doublestar pattern to ignore legacy/**")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "current", "a.png")) {
		t.Error("expected current/a.png to NOT be ignored")
	}
}

func Test_Matcher_FileSizeLimit(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{
		RootDir:          t.TempDir(),
		MaxFileSizeBytes: 1024,
	})

	if !matcher.IsFileTooLarge(2048) {
		t.Error("expected 2KB file to exceed 1KB limit")
	}
	if matcher.IsFileTooLarge(512) {
		t.Error("expected 512B file to be within 1KB limit")
	}
}

func Test_Matcher_ShouldIgnoreDir(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	tests := []struct {
		dirName string
		ignored bool
	}{
		{".git", true},
		{"node_modules", true},
		{".idea", true},
		{"icons", false},
		{"assets", false},
	}

	for _, tt := range tests {
		got := matcher.ShouldIgnoreDir(filepath.Join(tmpDir, tt.dirName))
		if got != tt.ignored {
			t.Errorf("ShouldIgnoreDir(%s) = %v, want %v", tt.dirName, got, tt.ignored)
		}
	}
}

func Test_Matcher_DefaultMaxFileSize(t *testing.T) {
	matcher := NewMatcher(MatcherOptions{RootDir: t.TempDir()})
	if matcher.MaxFileSizeBytes() != DefaultMaxFileSizeBytes {
		t.Errorf("expected default max file size %d, got %d", DefaultMaxFileSizeBytes, matcher.MaxFileSizeBytes())
	}
}

func Test_IsIgnoreFile(t *testing.T) {
	if !IsIgnoreFile("/root/.iconignore") || !IsIgnoreFile(".gitignore") {
		t.Error("expected .iconignore and .gitignore to be recognized")
	}
	if IsIgnoreFile("/root/icons/a.png") {
		t.Error("a.png is not an ignore file")
	}
}

func Test_Matcher_DefaultPatterns_AtomicWriteTempFiles(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	for _, name := range []string{".iconview-413525111.tmp", ".mcp-42.tmp", "all-icons_iconview.html"} {
		if !matcher.ShouldIgnore(filepath.Join(tmpDir, name)) {
			t.Errorf("expected %s to be ignored", name)
		}
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "iconview-logo.svg")) {
		t.Error("expected iconview-logo.svg to NOT be ignored")
	}
}
