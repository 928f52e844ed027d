package raster

import (
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

const BytesPerPixel = 4

// Image is a BGRA byte buffer, row-major, 4 bytes per pixel. The fourth byte
// is always 255.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

func NewImage(w, h int) *Image {
	return &Image{Width: w, Height: h, Pix: make([]byte, BytesPerPixel*w*h)}
}

// Encode converts g into BGRA. Each channel is int(255·v) clamped to 255;
// channel 0 of the grid lands in byte 2 and channel 2 in byte 0.
func Encode(g *Grid) *Image {
	img := NewImage(g.Width, g.Height)
	n := g.Width * g.Height
	for i := 0; i < n; i++ {
		r := toByte(g.Pix[3*i+0])
		gr := toByte(g.Pix[3*i+1])
		b := toByte(g.Pix[3*i+2])

		img.Pix[4*i+0] = b
		img.Pix[4*i+1] = gr
		img.Pix[4*i+2] = r
		img.Pix[4*i+3] = 255
	}
	return img
}

func toByte(v float64) byte {
	c := int(255 * v)
	if c > 255 {
		return 255
	}
	if c < 0 {
		return 0
	}
	return byte(c)
}

// Lit counts pixels with any non-zero colour byte.
func (im *Image) Lit() int {
	n := 0
	for i := 0; i < len(im.Pix); i += BytesPerPixel {
		if im.Pix[i] != 0 || im.Pix[i+1] != 0 || im.Pix[i+2] != 0 {
			n++
		}
	}
	return n
}

// RGBA converts to the standard library's byte order.
func (im *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	for i := 0; i < len(im.Pix); i += BytesPerPixel {
		out.Pix[i+0] = im.Pix[i+2]
		out.Pix[i+1] = im.Pix[i+1]
		out.Pix[i+2] = im.Pix[i+0]
		out.Pix[i+3] = im.Pix[i+3]
	}
	return out
}

// Thumbnail scales the image to fit within w×h, keeping its aspect ratio.
func (im *Image) Thumbnail(w, h int) *image.RGBA {
	src := im.RGBA()
	if w <= 0 || h <= 0 || im.Width == 0 || im.Height == 0 {
		return src
	}
	tw, th := w, h
	if im.Width*h > im.Height*w {
		th = max(1, im.Height*w/im.Width)
	} else {
		tw = max(1, im.Width*h/im.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func (im *Image) WritePNG(w io.Writer) error {
	return png.Encode(w, im.RGBA())
}

// SavePNG writes the image to path.
func (im *Image) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := im.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
