package main

import "path/filepath"

// storePath resolves an archive-relative manifest path against the store root.
func storePath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
