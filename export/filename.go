package export

import (
	"regexp"

	"golang.org/x/text/unicode/norm"

	"github.com/lexandro/iconview-mcp/catalog"
)

// DefaultLabel names exports of the "all" selection.
const DefaultLabel = "all-icons"

// Suffix tags every exported viewer file name.
const Suffix = "iconview"

var (
	reservedChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	// RE2 \s is ASCII only; Unicode spaces (NBSP, U+3000) and BOM count too
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
)

// SanitizeLabel makes a label safe for use as a file name segment:
// path-breaking characters become "-" and whitespace runs become "_".
// The label is NFC-normalized first so decomposed names from macOS
// produce the same file name as composed ones.
func SanitizeLabel(label string) string {
	label = norm.NFC.String(label)
	label = reservedChars.ReplaceAllString(label, "-")
	return whitespaceRun.ReplaceAllString(label, "_")
}

// Filename derives "<label>_iconview.html" from a selection.
// "all" and the root folder use DefaultLabel.
func Filename(sel catalog.Selection) string {
	label := DefaultLabel
	if !sel.IsAll() && sel.Key() != "" {
		label = sel.Key()
	}
	return SanitizeLabel(label) + "_" + Suffix + ".html"
}
