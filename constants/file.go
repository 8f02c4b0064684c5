package constants

import (
	"bytes"
	"strings"
)

// FileFormat is the content class the pipeline distinguishes.
type FileFormat string

const (
	IMAGE    FileFormat = "image"
	DOCUMENT FileFormat = "document" // multi-page (PDF) input
)

// AllowedExtensions holds the file extensions accepted for analysis.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// AllowedMediaTypes holds the declared media types accepted for analysis.
var AllowedMediaTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/webp":      {},
}

// ExtToMediaType resolves an already-normalized extension to its media type.
var ExtToMediaType = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Magic-byte signatures. The declared media type is advisory only; content
// sniffing always wins.
var (
	pdfMagic  = []byte("%PDF")
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// DetectFormat classifies a byte blob as PDF or image. Anything without the
// PDF signature is treated as an image; the decoder decides whether it is one.
func DetectFormat(data []byte) FileFormat {
	if bytes.HasPrefix(data, pdfMagic) {
		return DOCUMENT
	}
	return IMAGE
}

// SniffMediaType returns the media type implied by the payload's magic bytes,
// or "" when the signature is unknown.
func SniffMediaType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return "application/pdf"
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg"
	case bytes.HasPrefix(data, pngMagic):
		return "image/png"
	case bytes.HasPrefix(data, riffMagic) && len(data) >= 12 && bytes.Equal(data[8:12], webpMagic):
		return "image/webp"
	default:
		return ""
	}
}
