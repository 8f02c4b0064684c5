// Package prep turns a raw uploaded payload into conditioned raster pages
// ready for the vision extractor.
package prep

import (
	"path/filepath"

	"github.com/expensio/receipt-scan/constants"
	"github.com/expensio/receipt-scan/internal/common"
)

// CheckInput enforces the input contract: non-empty, within the size limit,
// and an accepted content kind. Content sniffing wins over the declared type;
// the declared type and filename extension are only consulted when the magic
// bytes are unrecognized. Returns the resolved media type.
func CheckInput(data []byte, filename, declaredType string, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", common.EmptyInputError()
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", common.PayloadTooLargeError(int64(len(data)), maxBytes)
	}

	if mt := constants.SniffMediaType(data); mt != "" {
		return mt, nil
	}
	if _, ok := constants.AllowedMediaTypes[declaredType]; ok {
		return declaredType, nil
	}
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if mt, ok := constants.ExtToMediaType[ext]; ok {
		return mt, nil
	}

	rejected := declaredType
	if rejected == "" {
		rejected = ext
	}
	return "", common.UnsupportedTypeError(rejected)
}
