package xwm

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Glyphs of the core "cursor" font.
const (
	cursorLeftPtr = 68
	cursorWatch   = 150
)

// createCursor makes a white on black cursor from the core cursor font.
func createCursor(conn *xgb.Conn, glyph uint16) (xproto.Cursor, error) {
	fontID, err := xproto.NewFontId(conn)
	if err != nil {
		return 0, err
	}

	cursorID, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.OpenFontChecked(conn, fontID, uint16(len("cursor")), "cursor").Check(); err != nil {
		return 0, err
	}
	defer xproto.CloseFont(conn, fontID)

	if err := xproto.CreateGlyphCursorChecked(conn, cursorID, fontID, fontID,
		glyph, glyph+1,
		0xffff, 0xffff, 0xffff,
		0, 0, 0).Check(); err != nil {
		return 0, err
	}

	return cursorID, nil
}

// setCursor changes the cursor shown over w.
func setCursor(conn *xgb.Conn, w Window, cursor xproto.Cursor) {
	xproto.ChangeWindowAttributes(conn, w.WID, xproto.CwCursor, []uint32{uint32(cursor)})
}
