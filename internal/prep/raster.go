package prep

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/webp"

	"github.com/expensio/receipt-scan/internal/common"
)

// RasterizePDF renders up to maxPages pages of a PDF into raster images,
// first page first. It fails only when no page at all can be rendered.
func RasterizePDF(data []byte, dpi, maxPages int) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, common.ConversionError(err)
	}
	defer doc.Close()

	n := doc.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	var pages []image.Image
	var lastErr error
	for i := 0; i < n; i++ {
		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			lastErr = fmt.Errorf("render page %d: %w", i+1, err)
			continue
		}
		pages = append(pages, img)
	}
	if len(pages) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("document has no pages")
		}
		return nil, common.ConversionError(lastErr)
	}
	return pages, nil
}

// DecodeImage decodes a JPEG, PNG or WEBP payload into a single raster image.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.DecodeError(err)
	}
	return img, nil
}
