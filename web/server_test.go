package web

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lexandro/iconview-mcp/blobref"
	"github.com/lexandro/iconview-mcp/catalog"
	"github.com/lexandro/iconview-mcp/export"
	"github.com/lexandro/iconview-mcp/importer"
)

type testSite struct {
	server   *Server
	state    *catalog.State
	registry *blobref.Registry
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	registry := blobref.NewRegistry()
	state := catalog.NewState(registry)
	state.Replace(importer.Import([]importer.File{
		{RelativePath: "icons/a.png", Source: blobref.BytesSource("\x89PNG\r\n\x1a\nrest")},
		{RelativePath: "icons/b.svg", Source: blobref.BytesSource("<svg xmlns=\"http://www.w3.org/2000/svg\"/>")},
		{RelativePath: "other/c.jpg", Source: blobref.BytesSource("\xff\xd8\xff\xe0jpeg")},
	}, registry, catalog.OriginDirectory))

	server := New(Options{
		State:  state,
		Refs:   registry,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testSite{server: server, state: state, registry: registry}
}

func (ts *testSite) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func Test_Server_IndexRendersCatalog(t *testing.T) {
	site := newTestSite(t)

	resp := site.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{"All icons", `href="/select?folder=icons"`, `href="/select?folder=other"`, `<span id="count">3</span>`, "/blob/"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func Test_Server_SelectChangesSelection(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   catalog.Selection
	}{
		{"folder", "/select?folder=icons", catalog.Folder("icons")},
		{"root folder", "/select?folder=", catalog.Folder("")},
		{"all", "/select", catalog.All()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newTestSite(t)
			site.state.Select(catalog.Folder("other"))

			resp := site.do(t, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/" {
				t.Errorf("expected redirect to /, got %d %q", resp.Code, resp.Header().Get("Location"))
			}
			if got := site.state.Selection(); got != tt.want {
				t.Errorf("selection = %s, want %s", got, tt.want)
			}
		})
	}
}

func Test_Server_SelectedFolderShowsOnlyItsIcons(t *testing.T) {
	site := newTestSite(t)
	site.state.Select(catalog.Folder("other"))

	body := site.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()

	if !strings.Contains(body, `alt="c.jpg"`) || strings.Contains(body, `alt="a.png"`) {
		t.Error("expected only the selected folder's icons")
	}
	if !strings.Contains(body, `<span id="count">1</span>`) {
		t.Error("expected count of 1")
	}
}

func newUploadRequest(t *testing.T, files map[string]string, order []string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, path := range order {
		part, err := writer.CreateFormFile("files", path[strings.LastIndex(path, "/")+1:])
		if err != nil {
			t.Fatalf("creating part: %v", err)
		}
		io.WriteString(part, files[path])
		writer.WriteField("paths", path)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func Test_Server_UploadReplacesCatalog(t *testing.T) {
	site := newTestSite(t)
	site.state.Select(catalog.Folder("icons"))
	oldRefs := site.state.Catalog().Refs()

	files := map[string]string{
		"set/x.svg":    "<svg/>",
		"set/y.PNG":    "png",
		"set/notes.md": "# notes",
		"z.ico":        "ico",
	}
	resp := site.do(t, newUploadRequest(t, files, []string{"set/x.svg", "set/y.PNG", "set/notes.md", "z.ico"}))

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	c, sel := site.state.Snapshot()
	if !sel.IsAll() {
		t.Errorf("expected selection reset to all, got %s", sel)
	}
	if c.Origin() != catalog.OriginUpload {
		t.Errorf("origin = %q", c.Origin())
	}
	folders := c.ListFolders()
	if len(folders) != 2 || folders[0] != "" || folders[1] != "set" {
		t.Errorf("folders = %v, want [\"\" set]", folders)
	}
	if icons := c.Icons("set"); len(icons) != 2 || icons[0].Name != "x.svg" || icons[1].Name != "y.PNG" {
		t.Errorf("unexpected set icons: %+v", icons)
	}
	for _, ref := range oldRefs {
		if _, err := site.registry.Resolve(context.Background(), ref); err == nil {
			t.Errorf("expected replaced ref %s to be released", ref)
		}
	}
}

func Test_Server_UploadCallsOnReplace(t *testing.T) {
	registry := blobref.NewRegistry()
	state := catalog.NewState(registry)
	var replaced *catalog.Catalog
	server := New(Options{
		State: state,
		Refs:  registry,
		OnReplace: func(c *catalog.Catalog) {
			replaced = c
			state.Replace(c)
		},
	})

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, newUploadRequest(t, map[string]string{"a/b.png": "png"}, []string{"a/b.png"}))

	if replaced == nil || replaced.Len() != 1 {
		t.Fatalf("expected OnReplace with 1 icon, got %v", replaced)
	}
}

func Test_Server_UploadWithoutIconsInstallsEmptyCatalog(t *testing.T) {
	site := newTestSite(t)
	oldRefs := site.state.Catalog().Refs()

	resp := site.do(t, newUploadRequest(t, nil, nil))

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	c := site.state.Catalog()
	if !c.IsEmpty() || c.Origin() != catalog.OriginUpload {
		t.Errorf("expected empty uploaded catalog, got %d icons from %q", c.Len(), c.Origin())
	}
	for _, ref := range oldRefs {
		if _, err := site.registry.Resolve(context.Background(), ref); err == nil {
			t.Errorf("expected replaced ref %s to be released", ref)
		}
	}
}

func Test_Server_UploadNotMultipart(t *testing.T) {
	site := newTestSite(t)
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("nothing"))
	req.Header.Set("Content-Type", "text/plain")

	resp := site.do(t, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Code)
	}
	if site.state.Catalog().Len() != 3 {
		t.Error("a rejected upload must not touch the catalog")
	}
}

func Test_Server_BlobServesBytes(t *testing.T) {
	site := newTestSite(t)
	ref := site.state.Catalog().Icons("icons")[1].ContentRef

	resp := site.do(t, httptest.NewRequest(http.MethodGet, blobref.URL(ref), nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.HasPrefix(resp.Body.String(), "<svg") {
		t.Errorf("unexpected body %q", resp.Body.String())
	}
}

func Test_Server_BlobServesRecordedMediaType(t *testing.T) {
	site := newTestSite(t)
	svg := `<?xml version="1.0"?>` + "\n<!-- " + strings.Repeat("license text ", 80) + "-->\n" +
		`<svg xmlns="http://www.w3.org/2000/svg"/>`

	resp := site.do(t, newUploadRequest(t, map[string]string{"set/logo.svg": svg}, []string{"set/logo.svg"}))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("upload status = %d", resp.Code)
	}
	icons := site.state.Catalog().Icons("set")
	if len(icons) != 1 {
		t.Fatalf("expected 1 icon, got %d", len(icons))
	}

	resp = site.do(t, httptest.NewRequest(http.MethodGet, blobref.URL(icons[0].ContentRef), nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", got)
	}
}

func Test_Server_BlobUnknown(t *testing.T) {
	site := newTestSite(t)

	resp := site.do(t, httptest.NewRequest(http.MethodGet, "/blob/does-not-exist", nil))

	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
}

func Test_Server_StaticStylesheet(t *testing.T) {
	site := newTestSite(t)

	resp := site.do(t, httptest.NewRequest(http.MethodGet, "/static/viewer.css", nil))

	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), ".grid") {
		t.Errorf("expected stylesheet, got %d", resp.Code)
	}
}

func Test_Server_ExportDownload(t *testing.T) {
	site := newTestSite(t)
	site.state.Select(catalog.Folder("icons"))

	resp := site.do(t, httptest.NewRequest(http.MethodGet, "/export", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != "attachment; filename=icons_iconview.html" {
		t.Errorf("Content-Disposition = %q", got)
	}
	body := resp.Body.String()
	if strings.Contains(body, "<link") || strings.Contains(body, "/blob/") {
		t.Error("downloaded export must be self-contained")
	}
	if !strings.Contains(body, "/* inlined: /static/viewer.css */") {
		t.Error("expected the viewer stylesheet to be inlined")
	}
	if strings.Count(body, "data-folder=") != 2 {
		t.Errorf("expected 2 folder blocks, got %d", strings.Count(body, "data-folder="))
	}
}

func Test_Server_ExportToFile(t *testing.T) {
	site := newTestSite(t)
	dir := t.TempDir()

	c, _ := site.state.Snapshot()
	result, err := site.server.Export(context.Background(), c, catalog.All(), export.FileDelivery{Dir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Filename != "all-icons_iconview.html" || result.Icons != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func Test_Server_ExportEmptyCatalogClonesViewer(t *testing.T) {
	registry := blobref.NewRegistry()
	server := New(Options{State: catalog.NewState(registry), Refs: registry})

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/export", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "No icons in this folder") {
		t.Error("expected the cloned empty state")
	}
	if strings.Contains(body, "folder-upload") || strings.Contains(body, ">Download<") {
		t.Error("expected upload and download controls to be stripped")
	}
}

func Test_Server_MethodNotAllowed(t *testing.T) {
	site := newTestSite(t)

	resp := site.do(t, httptest.NewRequest(http.MethodGet, "/upload", nil))

	if resp.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.Code)
	}
}
