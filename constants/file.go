package constants

import "strings"

// DefaultArchiveMarker selects the relevant invoices inside a bulk archive.
const DefaultArchiveMarker = "DIST_EE"

// AllowedExtensions holds the file extensions picked up by directory ingest and the watcher.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"zip": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsArchiveExt reports whether ext names a bundle that must go through the archive unpacker.
func IsArchiveExt(ext string) bool {
	return NormalizeExt(ext) == "zip"
}

// IsDocumentExt reports whether ext names a document handed straight to the decoder.
func IsDocumentExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}
