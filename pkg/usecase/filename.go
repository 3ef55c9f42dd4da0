package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// timestampLayout is YYYYMMDDhhmmss
const timestampLayout = "20060102150405"

var filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// ImageFilename builds the upload filename "pr-<n>-<display>-<timestamp>.<ext>".
// Slashes become "-", spaces are removed and any other character that is not
// safe in a URL path is replaced with "-". The timestamp is in UTC.
func ImageFilename(prNumber int, displayName, ext string, at time.Time) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	name := displayName
	if ext != "" && strings.HasSuffix(strings.ToLower(name), "."+ext) {
		name = name[:len(name)-len(ext)-1]
	}

	filename := fmt.Sprintf("pr-%d-%s-%s", prNumber, name, at.UTC().Format(timestampLayout))
	if ext != "" {
		filename += "." + ext
	}

	filename = strings.ReplaceAll(filename, "/", "-")
	filename = strings.ReplaceAll(filename, " ", "")
	return filenameUnsafe.ReplaceAllString(filename, "-")
}

// detectExtension returns the extension of image data without the dot.
// Unknown data is treated as PNG, the capture tool's output format.
func detectExtension(data []byte) string {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "png"
	}
	return strings.TrimPrefix(mtype.Extension(), ".")
}

var embeddableExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"gif":  true,
}

// isEmbeddable reports whether the file can be rendered inline in a comment
func isEmbeddable(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return embeddableExtensions[strings.ToLower(filename[idx+1:])]
}
