package transcode

import (
	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// DetectMimeType returns declared unless it is empty or generic, in which
// case the file content is sniffed.
func DetectMimeType(path, declared string) string {
	if bt := baseType(declared); bt != "" && bt != octetStream {
		return declared
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return declared
	}
	return mt.String()
}
