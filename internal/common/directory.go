package common

import (
	"fmt"
	"path/filepath"
)

// Directory describes a media directory served by the player.
type Directory struct {
	Path      string
	Recursive bool
	Watched   bool
}

// EnsureDirectoryPath appends a trailing separator, so the path can be used as a prefix of its children.
func EnsureDirectoryPath(path string) string {
	if path == "" || path[len(path)-1] == filepath.Separator {
		return path
	}

	return fmt.Sprintf("%s%c", path, filepath.Separator)
}
