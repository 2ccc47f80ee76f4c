package xdisplay

import (
	"fmt"
	"image"

	"github.com/jezek/xgb/xproto"
)

// EncodeZPixmap converts rows [y0, y1) of img into ZPixmap data for a
// PutImage request. Alpha is dropped unless the depth is 32.
func EncodeZPixmap(img *image.RGBA, y0, y1 int, f Format) ([]byte, error) {
	b := img.Bounds()
	w := b.Dx()
	s := stride(w, f.BitsPerPixel, f.ScanlinePad)
	data := make([]byte, s*(y1-y0))
	msb := f.ByteOrder == xproto.ImageOrderMSBFirst

	switch f.BitsPerPixel {
	case 32:
		for y := y0; y < y1; y++ {
			row := data[(y-y0)*s:]
			for x := 0; x < w; x++ {
				c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
				a := c.A
				if f.Depth != 32 {
					a = 0
				}
				p := row[x*4 : x*4+4]
				if msb {
					p[0], p[1], p[2], p[3] = a, c.R, c.G, c.B
				} else {
					p[0], p[1], p[2], p[3] = c.B, c.G, c.R, a
				}
			}
		}
	case 16:
		for y := y0; y < y1; y++ {
			row := data[(y-y0)*s:]
			for x := 0; x < w; x++ {
				c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
				var v uint16
				if f.Depth == 15 {
					v = uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
				} else {
					v = uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
				}
				if msb {
					row[x*2], row[x*2+1] = byte(v>>8), byte(v)
				} else {
					row[x*2], row[x*2+1] = byte(v), byte(v>>8)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported %d bits per pixel", f.BitsPerPixel)
	}

	return data, nil
}
