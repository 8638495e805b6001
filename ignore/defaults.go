package ignore

// AlwaysSkippedDirs are directory names never descended into.
var AlwaysSkippedDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "bower_components": true,
	"__pycache__": true, ".venv": true, "venv": true,
	".idea": true, ".vscode": true, ".vs": true,
	".next": true, ".nuxt": true, ".cache": true, ".parcel-cache": true,
}

// DefaultIgnorePatterns are skipped in every icon tree.
// Plain names match any path component; glob patterns match the base name.
var DefaultIgnorePatterns = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Dependencies
	"node_modules",
	"bower_components",

	// IDE / Editor
	".idea",
	".vscode",
	".vs",
	"*.swp",
	"*~",

	// OS files
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	"._*",

	// Previously exported viewers and in-flight atomic writes
	"*_iconview.html",
	".iconview-*.tmp",
	".mcp-*.tmp",
}
