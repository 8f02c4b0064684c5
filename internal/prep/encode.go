package prep

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

// EncodeDataURL serializes a conditioned page into a base64 data URL for the
// vision request. format is "png" (default) or "jpeg".
func EncodeDataURL(img image.Image, format string, jpegQuality int) (dataURL, mediaType string, err error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", "png":
		mediaType = "image/png"
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		mediaType = "image/jpeg"
		if jpegQuality <= 0 || jpegQuality > 100 {
			jpegQuality = 90
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return "", "", fmt.Errorf("unsupported encode format: %q", format)
	}
	if err != nil {
		return "", "", fmt.Errorf("encode %s: %w", mediaType, err)
	}
	data := base64.StdEncoding.EncodeToString(buf.Bytes())
	return "data:" + mediaType + ";base64," + data, mediaType, nil
}
