package xwm

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type Window struct {
	WID    xproto.Window
	Width  uint16
	Height uint16

	cursor xproto.Cursor
}

// CreateWindow maps a top level window of the given size.
func CreateWindow(conn *xgb.Conn, width, height uint16, title string) (Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)

	cursor, err := createCursor(conn, cursorLeftPtr)
	if err != nil {
		return Window{}, err
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return Window{}, err
	}

	if err := xproto.CreateWindowChecked(conn, screen.RootDepth,
		wid, screen.Root,
		0, 0, width, height, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor, // 1, 2, 3
		[]uint32{
			screen.BlackPixel, // 1
			xproto.EventMaskStructureNotify | xproto.EventMaskExposure | xproto.EventMaskKeyPress, // 2
			uint32(cursor), // 3
		}).Check(); err != nil {
		return Window{}, err
	}

	if title != "" {
		if err := xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
			xproto.AtomWmName, xproto.AtomString, 8,
			uint32(len(title)), []byte(title)).Check(); err != nil {
			xproto.DestroyWindow(conn, wid)
			return Window{}, err
		}
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return Window{}, err
	}

	return Window{
		WID:    wid,
		Width:  width,
		Height: height,
		cursor: cursor,
	}, nil
}

func (w Window) Destroy(conn *xgb.Conn) error {
	err := xproto.DestroyWindowChecked(conn, w.WID).Check()
	xproto.FreeCursor(conn, w.cursor)
	return err
}
