package main

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// writeHeatmapPNG renders the first channel of each element group as a
// grayscale pixel, normalized over the observed range, and upscales the
// grid with nearest-neighbor so individual texels stay visible.
func writeHeatmapPNG(path string, data []float32, dim, scale int) error {
	if scale < 1 {
		scale = 1
	}

	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for i := 0; i < dim*dim; i++ {
		v := data[i*4]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	img := image.NewGray(image.Rect(0, 0, dim, dim))
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			v := data[(y*dim+x)*4]
			img.SetGray(x, y, color.Gray{Y: uint8((v - lo) / span * 255)})
		}
	}

	scaled := image.NewGray(image.Rect(0, 0, dim*scale, dim*scale))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, scaled)
}
