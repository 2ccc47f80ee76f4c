package pixmap

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/ItsNotGoodName/x-sapwood/internal/proto"
)

type cell struct {
	tile image.Image
	mask image.Image
}

// TileSet is one decoded border image held by the server: a 3×3 grid of
// drawables plus the natural size of the whole image. It is immutable until
// Release.
type TileSet struct {
	client *Client
	spec   Spec
	id     uint32
	size   image.Point
	cells  [3][3]cell
	bound  bool
	errs   []error

	once     sync.Once
	released bool
}

func newTileSet(c *Client, spec Spec, rep proto.OpenResponse) *TileSet {
	ts := &TileSet{
		client: c,
		spec:   spec,
		id:     rep.ID,
		size:   image.Pt(int(rep.Width), int(rep.Height)),
	}

	name := filepath.Base(spec.File)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var cl cell

			if xid := rep.Pixmap[i][j]; xid.Valid() {
				img, err := c.display.BindPixmap(xid)
				if err == nil && img == nil {
					err = errors.New("no drawable")
				}
				if err != nil {
					ts.fail(fmt.Sprintf("%s: pixmap[%d][%d]", name, i, j), xid, err)
				} else {
					cl.tile = img
				}
			}

			if xid := rep.Pixmask[i][j]; xid.Valid() {
				img, err := c.display.BindMask(xid)
				if err == nil && img == nil {
					err = errors.New("no drawable")
				}
				if err != nil {
					ts.fail(fmt.Sprintf("%s: pixmask[%d][%d]", name, i, j), xid, err)
				} else {
					cl.mask = img
				}
			}

			if cl.mask != nil && cl.tile == nil {
				ts.fail(fmt.Sprintf("%s: pixmask[%d][%d]", name, i, j), rep.Pixmask[i][j], errors.New("no pixmap"))
				cl.mask = nil
			}

			if cl.tile != nil {
				ts.bound = true
			}
			ts.cells[i][j] = cl
		}
	}

	return ts
}

func (ts *TileSet) fail(op string, xid proto.XID, err error) {
	e := newError(KindInvalidHandle, op, fmt.Errorf("bind %s: %w", xid, err))
	ts.errs = append(ts.errs, e)
	ts.client.log.Warn("Failed to bind drawable", "id", ts.id, "cell", op, "xid", xid.String(), "error", err)
}

func (ts *TileSet) ID() uint32 {
	return ts.id
}

func (ts *TileSet) Spec() Spec {
	return ts.spec
}

// Size returns the natural size of the whole border image.
func (ts *TileSet) Size() image.Point {
	return ts.size
}

// Borders returns the insets the tile set was sliced with.
func (ts *TileSet) Borders() (left, right, top, bottom int) {
	b := ts.spec.Border
	return b.Left, b.Right, b.Top, b.Bottom
}

// Cell returns the drawable and mask at column col and row row. Either may
// be nil. A mask is never returned without a drawable.
func (ts *TileSet) Cell(col, row int) (tile, mask image.Image) {
	if ts.released {
		panic("pixmap: use of released tile set")
	}
	c := ts.cells[row][col]
	return c.tile, c.mask
}

// Degraded reports whether some handle returned by the server could not be
// bound, leaving its cell empty.
func (ts *TileSet) Degraded() bool {
	return len(ts.errs) > 0
}

// Errors returns the bind failures, each of KindInvalidHandle.
func (ts *TileSet) Errors() []error {
	return append([]error(nil), ts.errs...)
}

// Release drops the local drawables, waits for the display to finish every
// drawing operation that might still reference them and then tells the
// server to drop its reference. Only the first call has an effect.
func (ts *TileSet) Release() {
	first := false
	ts.once.Do(func() {
		first = true
		ts.released = true
		ts.cells = [3][3]cell{}

		if ts.bound {
			if err := ts.client.display.Sync(); err != nil {
				ts.client.log.Warn("Failed to sync display before close", "id", ts.id, "error", err)
			}
		}

		ts.client.release(ts.id)
	})
	if !first {
		ts.client.log.Warn("Tile set released twice", "id", ts.id, "file", ts.spec.File)
	}
}
