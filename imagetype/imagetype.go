package imagetype

import (
	"bytes"
	"net/http"
	"path"
	"sort"
	"strings"
)

// ExtensionToMediaType maps supported icon extensions (without dot, lowercase) to media types.
var ExtensionToMediaType = map[string]string{
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// Extensions returns the supported extensions, without dots, in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(ExtensionToMediaType))
	for ext := range ExtensionToMediaType {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extension returns the lowercase extension of a slash or backslash separated path, without the dot.
// Returns an empty string when the final segment has no extension.
func Extension(filePath string) string {
	base := path.Base(strings.ReplaceAll(filePath, "\\", "/"))
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[dot+1:])
}

// IsSupported reports whether the path has one of the supported icon extensions.
// The check is case-insensitive.
func IsSupported(filePath string) bool {
	_, ok := ExtensionToMediaType[Extension(filePath)]
	return ok
}

// MediaType returns the media type for the path's extension, or an empty string if unsupported.
func MediaType(filePath string) string {
	return ExtensionToMediaType[Extension(filePath)]
}

// Detect returns the media type for an icon, preferring the extension and
// falling back to content sniffing for unknown extensions.
func Detect(filePath string, data []byte) string {
	if mediaType := MediaType(filePath); mediaType != "" {
		return mediaType
	}
	if looksLikeSVG(data) {
		return "image/svg+xml"
	}
	return http.DetectContentType(data)
}

// looksLikeSVG checks the first 512 bytes (or less) for an <svg root element.
// http.DetectContentType reports SVG documents as text/xml or text/plain.
func looksLikeSVG(data []byte) bool {
	checkSize := 512
	if len(data) < checkSize {
		checkSize = len(data)
	}
	return bytes.Contains(bytes.ToLower(data[:checkSize]), []byte("<svg"))
}
