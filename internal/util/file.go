package util

import (
	"os"
	"path/filepath"
	"strings"
)

// VideoExtensions is the list of container extensions ffmpeg analysis accepts.
var VideoExtensions = map[string]bool{
	".mkv":  true,
	".ts":   true,
	".avi":  true,
	".mp4":  true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
	".mov":  true,
	".mxf":  true,
	".webm": true,
	".m2ts": true,
}

// HasVideoExtension reports whether path ends in a known video extension.
// Query strings and fragments on URLs are ignored.
func HasVideoExtension(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return VideoExtensions[strings.ToLower(filepath.Ext(path))]
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
