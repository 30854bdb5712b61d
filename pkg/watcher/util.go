package watcher

import (
	"path/filepath"
)

// IgnoreFolder returns true for folders that never contain client sources
// and cause an extreme amount of noise when watched.
func IgnoreFolder(folder string) bool {
	folderName := filepath.Base(filepath.Clean(folder))
	if folderName == "node_modules" {
		return true
	}

	// Don't watch hidden folders like `.git` or `.idea`.
	if len(folderName) > 1 && folderName[0] == '.' {
		return true
	}

	return false
}
