package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func Test_ReadHandler_ReturnsImage(t *testing.T) {
	state, registry := newTestState(t)
	h := &ReadHandler{State: state, Refs: registry, Logger: discardLogger()}

	result, _, err := h.Handle(context.Background(), nil, ReadArgs{Path: "icons/b.svg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	image, ok := result.Content[0].(*mcp.ImageContent)
	if !ok {
		t.Fatalf("expected image content, got %T", result.Content[0])
	}
	if string(image.Data) != "<svg/>" || image.MIMEType != "image/svg+xml" {
		t.Errorf("unexpected image %q (%s)", image.Data, image.MIMEType)
	}
}

func Test_ReadHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		release bool
		want    string
	}{
		{"empty path", "", false, "path parameter is required"},
		{"unknown icon", "icons/missing.png", false, "Icon not found"},
		{"released reference", "icons/a.png", true, "Read error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, registry := newTestState(t)
			if tt.release {
				icon, _ := state.Catalog().Find(tt.path)
				registry.Release(icon.ContentRef)
			}
			h := &ReadHandler{State: state, Refs: registry, Logger: discardLogger()}

			result, _, _ := h.Handle(context.Background(), nil, ReadArgs{Path: tt.path})

			if !result.IsError || !strings.Contains(resultText(t, result), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, resultText(t, result))
			}
		})
	}
}
