// Package datauri encodes bytes as self-describing RFC 2397 data URIs.
package datauri

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/lexandro/iconview-mcp/imagetype"
)

// ErrMalformed is returned by Decode for strings that are not base64 data URIs.
var ErrMalformed = errors.New("malformed data URI")

// Encode returns "data:<mediaType>;base64,<payload>".
// An empty media type defaults to application/octet-stream.
func Encode(data []byte, mediaType string) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	var builder strings.Builder
	builder.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	builder.WriteString("data:")
	builder.WriteString(mediaType)
	builder.WriteString(";base64,")
	builder.WriteString(base64.StdEncoding.EncodeToString(data))
	return builder.String()
}

// EncodeIcon encodes an icon, deriving the media type from its name or content.
func EncodeIcon(name string, data []byte) string {
	return Encode(data, imagetype.Detect(name, data))
}

// Decode parses a base64 data URI back into its bytes and media type.
func Decode(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", ErrMalformed
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrMalformed
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, "", ErrMalformed
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Join(ErrMalformed, err)
	}
	return data, mediaType, nil
}

// Is reports whether s is a data URI.
func Is(s string) bool {
	return strings.HasPrefix(s, "data:")
}
