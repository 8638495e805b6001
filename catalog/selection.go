package catalog

// RootLabel is the display name of the root folder key "".
const RootLabel = "(root)"

// AllLabel is the display name of the "all" selection.
const AllLabel = "All icons"

// Selection is either a concrete folder key or "all".
// The zero value selects all icons.
type Selection struct {
	key      string
	concrete bool
}

// All returns the "all icons" selection.
func All() Selection {
	return Selection{}
}

// Folder selects a concrete folder key. The empty key selects root-level
// icons and is distinct from All.
func Folder(key string) Selection {
	return Selection{key: key, concrete: true}
}

// IsAll reports whether the selection shows every folder.
func (s Selection) IsAll() bool {
	return !s.concrete
}

// Key returns the selected folder key, or "" for All.
func (s Selection) Key() string {
	return s.key
}

// Label returns the human-readable name of the selection.
func (s Selection) Label() string {
	if s.IsAll() {
		return AllLabel
	}
	return FolderLabel(s.key)
}

// String implements fmt.Stringer.
func (s Selection) String() string {
	if s.IsAll() {
		return "all"
	}
	return "folder:" + s.key
}

// FolderLabel returns the display name of a folder key.
func FolderLabel(key string) string {
	if key == "" {
		return RootLabel
	}
	return key
}
