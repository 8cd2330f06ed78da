package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"sync"
)

const placeholderSize = 160

var placeholder = sync.OnceValue(func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	fill := color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	edge := color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			c := fill
			if x < 2 || y < 2 || x >= placeholderSize-2 || y >= placeholderSize-2 || x == y || x == placeholderSize-1-y {
				c = edge
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		slog.Error("encode placeholder image", "error", err)
	}
	return buf.Bytes()
})

// placeholderPNG is served for catalog images that are not on disk.
func placeholderPNG() []byte {
	return placeholder()
}
