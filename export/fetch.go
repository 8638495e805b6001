package export

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
)

// Fetcher retrieves the text of a stylesheet.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HandlerFetcher serves requests from an in-process handler, so exports
// can inline the viewer's own stylesheets without a listening server.
type HandlerFetcher struct {
	Handler http.Handler
}

// Fetch runs a GET request through the handler.
func (f HandlerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	recorder := httptest.NewRecorder()
	f.Handler.ServeHTTP(recorder, req)

	if recorder.Code < 200 || recorder.Code > 299 {
		return nil, fmt.Errorf("fetching %s: status %d", url, recorder.Code)
	}
	return recorder.Body.Bytes(), nil
}
