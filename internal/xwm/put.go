package xwm

import (
	"image"

	"github.com/ItsNotGoodName/x-sapwood/internal/xdisplay"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const putImageHeader = 24

// PutImage uploads img at dst, split into as many requests as the server's
// request size limit needs.
func PutImage(conn *xgb.Conn, drawable xproto.Drawable, gc xproto.Gcontext, format xdisplay.Format, img *image.RGBA, dst image.Point) error {
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}

	rows := chunkRows(int(xproto.Setup(conn).MaximumRequestLength)*4, size.X, format)
	for y := 0; y < size.Y; y += rows {
		y1 := min(y+rows, size.Y)
		data, err := xdisplay.EncodeZPixmap(img, y, y1, format)
		if err != nil {
			return err
		}
		if err := xproto.PutImageChecked(conn, xproto.ImageFormatZPixmap, drawable, gc,
			uint16(size.X), uint16(y1-y),
			int16(dst.X), int16(dst.Y+y),
			0, byte(format.Depth), data).Check(); err != nil {
			return err
		}
	}
	return nil
}

// chunkRows is how many rows of width pixels fit in one request of maxBytes.
func chunkRows(maxBytes, width int, format xdisplay.Format) int {
	pad := format.ScanlinePad
	if pad <= 0 {
		pad = 8
	}
	stride := (width*format.BitsPerPixel + pad - 1) / pad * pad / 8
	if stride <= 0 {
		return 1
	}
	return max(1, (maxBytes-putImageHeader)/stride)
}
