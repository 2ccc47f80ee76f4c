// Package xdisplay binds sapwood drawable handles to local images through an
// X11 connection.
package xdisplay

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/ItsNotGoodName/x-sapwood/internal/proto"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type Display struct {
	conn  *xgb.Conn
	setup *xproto.SetupInfo
	// xtraps logs every X error caught while binding.
	xtraps bool
	log    *slog.Logger
}

func New(conn *xgb.Conn, xtraps bool) *Display {
	return &Display{
		conn:   conn,
		setup:  xproto.Setup(conn),
		xtraps: xtraps,
		log:    slog.With("package", "xdisplay"),
	}
}

// Format is the server's image layout for one depth.
type Format struct {
	Depth        int
	BitsPerPixel int
	ScanlinePad  int
	// ByteOrder is xproto.ImageOrderLSBFirst or xproto.ImageOrderMSBFirst.
	ByteOrder byte
	// BitOrder and ScanlineUnit only matter for 1 bit images.
	BitOrder     byte
	ScanlineUnit int
}

func (d *Display) format(depth byte) (Format, error) {
	return FormatFor(d.setup, depth)
}

// FormatFor looks up the pixmap format the server uses for depth.
func FormatFor(setup *xproto.SetupInfo, depth byte) (Format, error) {
	for _, f := range setup.PixmapFormats {
		if f.Depth == depth {
			return Format{
				Depth:        int(f.Depth),
				BitsPerPixel: int(f.BitsPerPixel),
				ScanlinePad:  int(f.ScanlinePad),
				ByteOrder:    setup.ImageByteOrder,
				BitOrder:     setup.BitmapFormatBitOrder,
				ScanlineUnit: int(setup.BitmapFormatScanlineUnit),
			}, nil
		}
	}
	return Format{}, fmt.Errorf("no pixmap format for depth %d", depth)
}

// fetch reads the whole drawable. Errors from the checked requests are how a
// foreign or stale handle is detected.
func (d *Display) fetch(xid proto.XID) (*xproto.GetImageReply, Format, image.Point, error) {
	drawable := xproto.Drawable(xid)

	geom, err := xproto.GetGeometry(d.conn, drawable).Reply()
	if err != nil {
		d.trap("GetGeometry", xid, err)
		return nil, Format{}, image.Point{}, err
	}
	size := image.Pt(int(geom.Width), int(geom.Height))

	format, err := d.format(geom.Depth)
	if err != nil {
		return nil, Format{}, image.Point{}, err
	}

	rep, err := xproto.GetImage(d.conn, xproto.ImageFormatZPixmap, drawable,
		0, 0, geom.Width, geom.Height, 0xffffffff).Reply()
	if err != nil {
		d.trap("GetImage", xid, err)
		return nil, Format{}, image.Point{}, err
	}

	return rep, format, size, nil
}

func (d *Display) trap(request string, xid proto.XID, err error) {
	if d.xtraps {
		d.log.Debug("X error", "request", request, "xid", xid.String(), "error", err)
	}
}

func (d *Display) BindPixmap(xid proto.XID) (image.Image, error) {
	rep, format, size, err := d.fetch(xid)
	if err != nil {
		return nil, err
	}
	return DecodeZPixmap(rep.Data, size, format)
}

func (d *Display) BindMask(xid proto.XID) (image.Image, error) {
	rep, format, size, err := d.fetch(xid)
	if err != nil {
		return nil, err
	}
	if format.Depth != 1 {
		return nil, fmt.Errorf("mask %s has depth %d", xid, format.Depth)
	}
	return DecodeBitmap(rep.Data, size, format)
}

// Sync is a round trip: the reply to GetInputFocus cannot arrive before the
// server has handled every earlier request on the connection.
func (d *Display) Sync() error {
	_, err := xproto.GetInputFocus(d.conn).Reply()
	return err
}

// Conn returns the underlying connection.
func (d *Display) Conn() *xgb.Conn {
	return d.conn
}
