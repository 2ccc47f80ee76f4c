package xdisplay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/jezek/xgb/xproto"
)

func stride(width, bpp, pad int) int {
	if pad <= 0 {
		pad = 8
	}
	bits := width * bpp
	return ((bits + pad - 1) / pad) * pad / 8
}

// DecodeZPixmap converts ZPixmap data of depth 15, 16, 24 or 32 into RGBA.
// Depth 32 data is taken as premultiplied ARGB, anything else as opaque.
func DecodeZPixmap(data []byte, size image.Point, f Format) (*image.RGBA, error) {
	s := stride(size.X, f.BitsPerPixel, f.ScanlinePad)
	if len(data) < s*size.Y {
		return nil, fmt.Errorf("image data of %d bytes, want %d", len(data), s*size.Y)
	}

	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	msb := f.ByteOrder == xproto.ImageOrderMSBFirst

	switch f.BitsPerPixel {
	case 32:
		for y := 0; y < size.Y; y++ {
			row := data[y*s:]
			for x := 0; x < size.X; x++ {
				p := row[x*4 : x*4+4]
				b, g, r, a := p[0], p[1], p[2], p[3]
				if msb {
					a, r, g, b = p[0], p[1], p[2], p[3]
				}
				if f.Depth != 32 {
					a = 0xff
				}
				img.SetRGBA(x, y, color.RGBA{r, g, b, a})
			}
		}
	case 16:
		for y := 0; y < size.Y; y++ {
			row := data[y*s:]
			for x := 0; x < size.X; x++ {
				v := uint16(row[x*2]) | uint16(row[x*2+1])<<8
				if msb {
					v = uint16(row[x*2])<<8 | uint16(row[x*2+1])
				}
				var r, g, b uint8
				if f.Depth == 15 {
					r, g, b = expand(v>>10&0x1f, 5), expand(v>>5&0x1f, 5), expand(v&0x1f, 5)
				} else {
					r, g, b = expand(v>>11&0x1f, 5), expand(v>>5&0x3f, 6), expand(v&0x1f, 5)
				}
				img.SetRGBA(x, y, color.RGBA{r, g, b, 0xff})
			}
		}
	default:
		return nil, fmt.Errorf("unsupported depth %d (%d bpp)", f.Depth, f.BitsPerPixel)
	}

	return img, nil
}

func expand(v uint16, bits uint) uint8 {
	return uint8(v<<(8-bits) | v>>(2*bits-8))
}

// DecodeBitmap converts 1 bit ZPixmap data into an alpha mask where set bits
// are opaque.
func DecodeBitmap(data []byte, size image.Point, f Format) (*image.Alpha, error) {
	s := stride(size.X, 1, f.ScanlinePad)
	if len(data) < s*size.Y {
		return nil, fmt.Errorf("bitmap data of %d bytes, want %d", len(data), s*size.Y)
	}

	unit := f.ScanlineUnit / 8
	if unit <= 0 {
		unit = 1
	}
	swap := f.ByteOrder == xproto.ImageOrderMSBFirst && unit > 1
	msbBits := f.BitOrder == xproto.ImageOrderMSBFirst

	img := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		row := data[y*s : (y+1)*s]
		for x := 0; x < size.X; x++ {
			i := x / 8
			if swap {
				i = (i/unit)*unit + unit - 1 - i%unit
			}
			bit := uint(x % 8)
			if msbBits {
				bit = 7 - bit
			}
			if row[i]>>bit&1 != 0 {
				img.Pix[y*img.Stride+x] = 0xff
			}
		}
	}

	return img, nil
}
