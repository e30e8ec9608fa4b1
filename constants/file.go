package constants

import "strings"

// SourceFormat is the kind of page file a job points at.
type SourceFormat string

const (
	SourceFormatPDF   SourceFormat = "PDF"
	SourceFormatImage SourceFormat = "IMAGE"
	SourceFormatText  SourceFormat = "TXT"
)

// AllowedExtensions holds the file extensions accepted as page sources.
var AllowedExtensions = map[string]SourceFormat{
	"pdf":  SourceFormatPDF,
	"jpg":  SourceFormatImage,
	"jpeg": SourceFormatImage,
	"png":  SourceFormatImage,
	"tif":  SourceFormatImage,
	"tiff": SourceFormatImage,
	"txt":  SourceFormatText,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for a file extension.
func MapExtToFormat(ext string) (SourceFormat, bool) {
	f, ok := AllowedExtensions[NormalizeExt(ext)]
	return f, ok
}
