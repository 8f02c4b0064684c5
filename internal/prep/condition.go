package prep

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
)

// ConditionConfig holds the normalization thresholds. The dimension band
// bounds per-call vision cost; the boost values are empirically tuned.
type ConditionConfig struct {
	MinDimension  int
	MaxDimension  int
	ContrastBoost float64 // percent, ~30 ≈ 1.3x
	SharpenSigma  float64
}

// Condition normalizes one raster page: flattens transparency onto white,
// resizes the larger dimension into [MinDimension, MaxDimension] preserving
// aspect ratio, then applies the contrast and sharpness boost. It never
// fails; any internal problem returns the input unchanged.
func Condition(img image.Image, cfg ConditionConfig) (out image.Image) {
	out = img
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("prep.condition.recovered", "panic", r)
			out = img
		}
	}()
	if img == nil {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	// flatten onto white; also coerces palette/gray/alpha modes to RGB
	flat := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	larger := w
	if h > larger {
		larger = h
	}
	switch {
	case cfg.MinDimension > 0 && larger < cfg.MinDimension:
		flat = rescale(flat, w, h, float64(cfg.MinDimension)/float64(larger))
	case cfg.MaxDimension > 0 && larger > cfg.MaxDimension:
		flat = rescale(flat, w, h, float64(cfg.MaxDimension)/float64(larger))
	}

	if cfg.ContrastBoost != 0 {
		flat = imaging.AdjustContrast(flat, cfg.ContrastBoost)
	}
	if cfg.SharpenSigma > 0 {
		flat = imaging.Sharpen(flat, cfg.SharpenSigma)
	}
	return flat
}

func rescale(img *image.NRGBA, w, h int, scale float64) *image.NRGBA {
	newW := int(float64(w)*scale + 0.5)
	newH := int(float64(h)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	return imaging.Resize(img, newW, newH, imaging.Lanczos)
}
