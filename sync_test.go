package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/ignore"
	"github.com/lexandro/iconview-mcp/importer"
	"github.com/lexandro/iconview-mcp/search"
	"github.com/lexandro/iconview-mcp/watcher"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"/>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIgnoreMatcher(rootDir string) *ignore.Matcher {
	return ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:          rootDir,
		MaxFileSizeBytes: 1024 * 1024,
	})
}

func newTestLibrary(t *testing.T, rootDir string) *library {
	t.Helper()
	refs := blobref.NewRegistry()
	names, err := search.NewNameIndex()
	if err != nil {
		t.Fatal(err)
	}
	state := catalog.NewState(refs)
	t.Cleanup(func() {
		state.Close()
		names.Close()
	})
	return &library{
		rootDir: rootDir,
		state:   state,
		refs:    refs,
		names:   names,
		matcher: testIgnoreMatcher(rootDir),
		logger:  testLogger(),
	}
}

func writeTestIcon(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func Test_performSyncVerification_DetectsMissingIcons(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	// Create an icon on disk but don't import it
	writeTestIcon(t, filepath.Join(tmpDir, "set", "missing.svg"), testSVG)

	result := performSyncVerification(lib, testLogger())

	if result.MissingIcons != 1 {
		t.Errorf("expected 1 missing icon, got %d", result.MissingIcons)
	}
	if result.StaleIcons != 0 || result.ModifiedIcons != 0 {
		t.Errorf("expected no stale or modified icons, got %+v", result)
	}
	if !result.Reimported {
		t.Error("expected a re-import")
	}
	if _, ok := lib.state.Catalog().Find("set/missing.svg"); !ok {
		t.Error("expected set/missing.svg to be imported after sync")
	}
	hits, _, err := lib.names.Search(search.SearchOptions{Query: "missing", Selection: catalog.All()})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected name index to follow the re-import, got %d hits", len(hits))
	}
}

func Test_performSyncVerification_DetectsStaleIcons(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	iconPath := filepath.Join(tmpDir, "stale.svg")
	writeTestIcon(t, iconPath, testSVG)
	if _, _, err := lib.performImport(); err != nil {
		t.Fatal(err)
	}
	os.Remove(iconPath)

	result := performSyncVerification(lib, testLogger())

	if result.StaleIcons != 1 {
		t.Errorf("expected 1 stale icon, got %d", result.StaleIcons)
	}
	if !lib.state.Catalog().IsEmpty() {
		t.Error("expected stale icon to be dropped from the catalog")
	}
}

func Test_performSyncVerification_DetectsModifiedIcons(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	iconPath := filepath.Join(tmpDir, "changed.svg")
	writeTestIcon(t, iconPath, testSVG)
	if _, _, err := lib.performImport(); err != nil {
		t.Fatal(err)
	}

	writeTestIcon(t, iconPath, testSVG+"\n<!-- edited -->")
	future := time.Now().Add(2 * time.Second)
	os.Chtimes(iconPath, future, future)

	result := performSyncVerification(lib, testLogger())

	if result.ModifiedIcons != 1 {
		t.Errorf("expected 1 modified icon, got %d", result.ModifiedIcons)
	}
	icon, ok := lib.state.Catalog().Find("changed.svg")
	if !ok {
		t.Fatal("expected changed.svg to stay in the catalog")
	}
	if icon.SizeBytes != int64(len(testSVG+"\n<!-- edited -->")) {
		t.Errorf("expected updated size, got %d", icon.SizeBytes)
	}
}

func Test_performSyncVerification_InSyncReturnsZeros(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "a.svg"), testSVG)
	writeTestIcon(t, filepath.Join(tmpDir, "set", "b.png"), "png")
	if _, _, err := lib.performImport(); err != nil {
		t.Fatal(err)
	}
	before := lib.state.Catalog()

	result := performSyncVerification(lib, testLogger())

	if result.Discrepancies() != 0 {
		t.Errorf("expected no discrepancies, got %+v", result)
	}
	if result.Reimported {
		t.Error("expected no re-import when in sync")
	}
	if lib.state.Catalog() != before {
		t.Error("expected catalog to be left untouched")
	}
}

func Test_performSyncVerification_SkipsUnsupportedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "notes.txt"), "hello")
	writeTestIcon(t, filepath.Join(tmpDir, "data.json"), "{}")

	result := performSyncVerification(lib, testLogger())

	if result.Discrepancies() != 0 {
		t.Errorf("expected unsupported files to be skipped, got %+v", result)
	}
}

func Test_performSyncVerification_SkipsIgnoredDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "node_modules", "pkg", "logo.svg"), testSVG)
	writeTestIcon(t, filepath.Join(tmpDir, ".git", "icon.png"), "png")

	result := performSyncVerification(lib, testLogger())

	if result.Discrepancies() != 0 {
		t.Errorf("expected ignored directories to be skipped, got %+v", result)
	}
}

func Test_performSyncVerification_SkipsTooLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)
	lib.matcher = ignore.NewMatcher(ignore.MatcherOptions{RootDir: tmpDir, MaxFileSizeBytes: 10})

	writeTestIcon(t, filepath.Join(tmpDir, "big.svg"), testSVG)

	result := performSyncVerification(lib, testLogger())

	if result.Discrepancies() != 0 {
		t.Errorf("expected oversized icon to be skipped, got %+v", result)
	}
}

func Test_performSyncVerification_LeavesUploadsAlone(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	uploaded := importer.Import([]importer.File{
		{RelativePath: "picked/a.svg", Source: blobref.BytesSource(testSVG), SizeBytes: int64(len(testSVG))},
	}, lib.refs, catalog.OriginUpload)
	lib.replace(uploaded)
	writeTestIcon(t, filepath.Join(tmpDir, "disk.svg"), testSVG)

	result := performSyncVerification(lib, testLogger())

	if result.Discrepancies() != 0 || result.Reimported {
		t.Errorf("expected uploaded catalog to be skipped, got %+v", result)
	}
	if lib.state.Catalog() != uploaded {
		t.Error("expected uploaded catalog to remain current")
	}
}

func Test_performSyncVerification_EmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	result := performSyncVerification(lib, testLogger())

	if result.Discrepancies() != 0 {
		t.Errorf("expected no discrepancies, got %+v", result)
	}
	if result.Duration == 0 {
		t.Error("expected Duration to be set even for empty directory")
	}
}

func Test_compareWithDisk(t *testing.T) {
	modTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := catalog.NewBuilder(catalog.OriginDirectory)
	b.Add("set", catalog.IconRecord{Name: "same.svg", ContentRef: "blob:1", RelativePath: "set/same.svg", SizeBytes: 10, ModTime: modTime})
	b.Add("set", catalog.IconRecord{Name: "resized.svg", ContentRef: "blob:2", RelativePath: "set/resized.svg", SizeBytes: 10, ModTime: modTime})
	b.Add("", catalog.IconRecord{Name: "gone.png", ContentRef: "blob:3", RelativePath: "gone.png", SizeBytes: 10, ModTime: modTime})
	c := b.Build()

	files := []importer.File{
		{RelativePath: "set/same.svg", SizeBytes: 10, ModTime: modTime},
		{RelativePath: "set/resized.svg", SizeBytes: 12, ModTime: modTime},
		{RelativePath: "new.ico", SizeBytes: 5, ModTime: modTime},
	}

	result := compareWithDisk(files, c)

	if result.MissingIcons != 1 || result.StaleIcons != 1 || result.ModifiedIcons != 1 {
		t.Errorf("expected 1 missing, 1 stale, 1 modified, got %+v", result)
	}
	if result.Discrepancies() != 3 {
		t.Errorf("expected 3 discrepancies, got %d", result.Discrepancies())
	}
}

func Test_library_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "a.svg"), testSVG)
	writeTestIcon(t, filepath.Join(tmpDir, "skip", "b.svg"), testSVG)
	writeTestIcon(t, filepath.Join(tmpDir, ".iconignore"), "skip/\n")

	count, size, elapsed, err := lib.reload()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 icon after reload, got %d", count)
	}
	if size != int64(len(testSVG)) {
		t.Errorf("expected size %d, got %d", len(testSVG), size)
	}
	if elapsed == "" {
		t.Error("expected elapsed time")
	}
}

func Test_library_ImportMissingRoot(t *testing.T) {
	lib := newTestLibrary(t, filepath.Join(t.TempDir(), "nope"))

	if _, _, err := lib.performImport(); err == nil {
		t.Fatal("expected error for missing root")
	}
	if !lib.state.Catalog().IsEmpty() {
		t.Error("expected catalog to stay empty")
	}
}

func Test_runPeriodicSync_StopsOnContextCancel(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		runPeriodicSync(ctx, time.Hour, lib, testLogger())
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runPeriodicSync did not stop after context cancel")
	}
}

func Test_library_Refresh_KeepsStateWhenUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "set", "a.svg"), testSVG)
	if _, _, err := lib.performImport(); err != nil {
		t.Fatal(err)
	}
	lib.state.Select(catalog.Folder("set"))
	before := lib.state.Catalog()
	icon, _ := before.Find("set/a.svg")

	// An export saved into the root is not an icon change
	delivery := export.FileDelivery{Dir: tmpDir}
	err := delivery.Deliver(context.Background(), export.Artifact{
		Filename:  "set_iconview.html",
		Payload:   []byte("<!DOCTYPE html>"),
		MediaType: export.MediaType,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := lib.refresh()
	if err != nil {
		t.Fatal(err)
	}
	if result.Reimported {
		t.Errorf("expected no re-import, got %+v", result)
	}
	if lib.state.Catalog() != before {
		t.Error("expected catalog to be left untouched")
	}
	if lib.state.Selection() != catalog.Folder("set") {
		t.Errorf("expected selection to survive, got %v", lib.state.Selection())
	}
	if _, err := lib.refs.Resolve(context.Background(), icon.ContentRef); err != nil {
		t.Errorf("expected icon ref to stay live: %v", err)
	}
}

func Test_library_Refresh_UploadDuringRefreshIsKept(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)
	writeTestIcon(t, filepath.Join(tmpDir, "disk.svg"), testSVG)

	uploaded := importer.Import([]importer.File{
		{RelativePath: "picked/a.svg", Source: blobref.BytesSource(testSVG), SizeBytes: int64(len(testSVG))},
	}, lib.refs, catalog.OriginUpload)

	// Hold the lock so the refresh queues behind the upload
	lib.mu.Lock()
	done := make(chan SyncResult)
	go func() {
		result, _ := lib.refresh()
		done <- result
	}()
	time.Sleep(20 * time.Millisecond)
	lib.replaceLocked(uploaded)
	lib.mu.Unlock()

	result := <-done
	if !result.Skipped || result.Reimported {
		t.Errorf("expected refresh to skip the upload, got %+v", result)
	}
	if lib.state.Catalog() != uploaded {
		t.Error("expected uploaded catalog to remain current")
	}
}

func Test_handleWatcherEvents_IgnoresUnrelatedChanges(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "a.svg"), testSVG)
	if _, _, err := lib.performImport(); err != nil {
		t.Fatal(err)
	}
	lib.state.Select(catalog.Folder(""))
	before := lib.state.Catalog()

	events := make(chan []watcher.DebouncedEvent, 1)
	events <- []watcher.DebouncedEvent{
		{Path: filepath.Join(tmpDir, ".iconview-413525111.tmp"), Op: watcher.OpRename},
		{Path: filepath.Join(tmpDir, "notes.txt~"), Op: watcher.OpRemove},
	}
	close(events)
	handleWatcherEvents(events, lib, testLogger())

	if lib.state.Catalog() != before {
		t.Error("expected catalog to be left untouched")
	}
	if lib.state.Selection() != catalog.Folder("") {
		t.Errorf("expected selection to survive, got %v", lib.state.Selection())
	}
}

func Test_handleWatcherEvents_ImportsNewIcons(t *testing.T) {
	tmpDir := t.TempDir()
	lib := newTestLibrary(t, tmpDir)

	writeTestIcon(t, filepath.Join(tmpDir, "a.svg"), testSVG)
	if _, _, err := lib.performImport(); err != nil {
		t.Fatal(err)
	}
	newIcon := filepath.Join(tmpDir, "set", "b.svg")
	writeTestIcon(t, newIcon, testSVG)

	events := make(chan []watcher.DebouncedEvent, 1)
	events <- []watcher.DebouncedEvent{{Path: newIcon, Op: watcher.OpCreate}}
	close(events)
	handleWatcherEvents(events, lib, testLogger())

	if _, ok := lib.state.Catalog().Find("set/b.svg"); !ok {
		t.Error("expected set/b.svg to be imported")
	}
}
