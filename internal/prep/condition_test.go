package prep

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = ConditionConfig{
	MinDimension:  800,
	MaxDimension:  2500,
	ContrastBoost: 30,
	SharpenSigma:  1.5,
}

func solidImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{200, 200, 200, 255})
		}
	}
	return img
}

func largerDim(img image.Image) int {
	b := img.Bounds()
	if b.Dx() > b.Dy() {
		return b.Dx()
	}
	return b.Dy()
}

func TestConditionBoundsDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"tiny", 100, 60},
		{"small portrait", 300, 700},
		{"already in band", 1200, 900},
		{"at lower bound", 800, 400},
		{"huge landscape", 4000, 3000},
		{"huge portrait", 1000, 6000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Condition(solidImage(tt.w, tt.h), testCfg)
			larger := largerDim(out)
			assert.GreaterOrEqual(t, larger, testCfg.MinDimension)
			assert.LessOrEqual(t, larger, testCfg.MaxDimension)
		})
	}
}

func TestConditionPreservesAspectRatio(t *testing.T) {
	out := Condition(solidImage(4000, 2000), testCfg)
	b := out.Bounds()
	ratio := float64(b.Dx()) / float64(b.Dy())
	assert.InDelta(t, 2.0, ratio, 0.01)
}

func TestConditionRepeatedApplicationStaysInBand(t *testing.T) {
	out := Condition(solidImage(120, 90), testCfg)
	out = Condition(out, testCfg)
	larger := largerDim(out)
	assert.GreaterOrEqual(t, larger, testCfg.MinDimension)
	assert.LessOrEqual(t, larger, testCfg.MaxDimension)
}

func TestConditionFlattensTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 900, 900))
	// fully transparent input must come out opaque white, not black
	out := Condition(img, testCfg)
	r, g, b, a := out.At(450, 450).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestConditionNilAndEmptyInput(t *testing.T) {
	assert.Nil(t, Condition(nil, testCfg))

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	out := Condition(empty, testCfg)
	require.NotNil(t, out)
	assert.Equal(t, 0, out.Bounds().Dx())
}
