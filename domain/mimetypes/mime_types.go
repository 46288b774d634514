package mimetypes

import "mime"

type MIME string

const (
	Unknown     MIME = "unknown"
	OctetStream MIME = "application/octet-stream"

	ApplicationZip  MIME = "application/zip"
	Application7z   MIME = "application/x-7z-compressed"
	ApplicationGzip MIME = "application/gzip"
	ApplicationTar  MIME = "application/x-tar"
	ApplicationXz   MIME = "application/x-xz"
	ApplicationZstd MIME = "application/zstd"
)

var archives = []MIME{ApplicationZip, Application7z, ApplicationGzip, ApplicationTar, ApplicationXz, ApplicationZstd}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// IsArchive reports whether a sniffed content type is one of the known archive formats.
func IsArchive(detected string) bool {
	for _, a := range archives {
		if _, ok := Matches(detected, a); ok {
			return true
		}
	}
	return false
}
