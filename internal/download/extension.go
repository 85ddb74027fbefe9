package download

import (
	"net/url"
	"path"
	"strings"
)

// mimeExtensions maps server-declared content types to file extensions. The
// declared type is more trustworthy than a URL's incidental suffix: a .jpg
// path may well serve a PNG.
var mimeExtensions = map[string]string{
	"image/jpeg":        ".jpg",
	"image/jpg":         ".jpg",
	"image/png":         ".png",
	"image/gif":         ".gif",
	"image/webp":        ".webp",
	"image/svg+xml":     ".svg",
	"image/avif":        ".avif",
	"image/bmp":         ".bmp",
	"image/tiff":        ".tiff",
	"video/mp4":         ".mp4",
	"video/webm":        ".webm",
	"video/quicktime":   ".mov",
	"audio/mpeg":        ".mp3",
	"audio/wav":         ".wav",
	"audio/ogg":         ".ogg",
	"model/gltf-binary": ".glb",
	"model/gltf+json":   ".gltf",
	"application/json":  ".json",
	"application/pdf":   ".pdf",
	"text/html":         ".html",
	"text/plain":        ".txt",
}

// Extension resolves the file extension for a downloaded asset. A mapped
// content type wins over the URL's own suffix; an unmapped or absent content
// type falls back to the last dotted segment of the URL path with query and
// fragment stripped; failing both, ".bin".
func Extension(rawURL, contentType string) string {
	if ext, ok := extensionForContentType(contentType); ok {
		return ext
	}
	if ext := extensionFromPath(rawURL); ext != "" {
		return ext
	}
	return ".bin"
}

func extensionForContentType(contentType string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(normalized, ';'); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	if normalized == "" {
		return "", false
	}
	ext, ok := mimeExtensions[normalized]
	return ext, ok
}

func extensionFromPath(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}
	pathPart := trimmed
	if parsed, err := url.Parse(trimmed); err == nil && parsed.Path != "" {
		pathPart = parsed.Path
	} else {
		// Not parsable as a URL; strip query/fragment by hand.
		if idx := strings.IndexAny(pathPart, "?#"); idx >= 0 {
			pathPart = pathPart[:idx]
		}
	}
	ext := strings.ToLower(path.Ext(pathPart))
	if ext == "" || ext == "." {
		return ""
	}
	return ext
}
