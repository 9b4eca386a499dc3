package formats

import (
	"path/filepath"
	"strings"
)

// relativeURI converts a file path to a forward-slash URI relative to root.
// When root is the file itself its base name is used; paths outside root are
// kept as given.
func relativeURI(root, filePath string) string {
	if root != "" {
		rel, err := filepath.Rel(root, filePath)
		switch {
		case err != nil:
		case rel == ".":
			filePath = filepath.Base(filePath)
		case !strings.HasPrefix(rel, ".."):
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}

// singleLine flattens tabs and line breaks so a value fits in one cell.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func escapeTableCell(s string) string {
	return strings.ReplaceAll(singleLine(s), "|", "\\|")
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
