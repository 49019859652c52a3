package video

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

// Frame is a single decoded video frame in packed RGB24 layout, three bytes
// per pixel in row-major order.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// FrameSize returns the byte length of one RGB24 frame at the given geometry.
func FrameSize(width, height int) int {
	return width * height * 3
}

// Valid reports whether the pixel buffer matches the declared geometry.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) == FrameSize(f.Width, f.Height)
}

// Crop returns the sub-frame covering the given pixel rectangle, clamped to
// the frame bounds. Regions fully outside the frame yield an empty frame.
func (f Frame) Crop(x, y, width, height int) Frame {
	x0 := clamp(x, 0, f.Width)
	y0 := clamp(y, 0, f.Height)
	x1 := clamp(x+width, 0, f.Width)
	y1 := clamp(y+height, 0, f.Height)
	if x1 <= x0 || y1 <= y0 {
		return Frame{}
	}

	out := Frame{
		Width:  x1 - x0,
		Height: y1 - y0,
		Pix:    make([]byte, FrameSize(x1-x0, y1-y0)),
	}
	srcStride := f.Width * 3
	dstStride := out.Width * 3
	for row := 0; row < out.Height; row++ {
		srcOff := (y0+row)*srcStride + x0*3
		copy(out.Pix[row*dstStride:(row+1)*dstStride], f.Pix[srcOff:srcOff+dstStride])
	}
	return out
}

// EncodeJPEG serializes the frame for transport to the model server.
func (f Frame) EncodeJPEG() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("encode frame: invalid geometry %dx%d with %d pixel bytes", f.Width, f.Height, len(f.Pix))
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			off := (y*f.Width + x) * 3
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[off], G: f.Pix[off+1], B: f.Pix[off+2], A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
