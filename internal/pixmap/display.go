package pixmap

import (
	"image"

	"github.com/ItsNotGoodName/x-sapwood/internal/proto"
)

// Display turns raw server handles into local drawables and provides the
// barrier that must run before their server-side storage is freed.
type Display interface {
	// BindPixmap binds a color drawable. It must fail, not crash, on a
	// handle that does not exist or belongs to nobody.
	BindPixmap(xid proto.XID) (image.Image, error)
	// BindMask binds a 1-bit drawable as an alpha mask.
	BindMask(xid proto.XID) (image.Image, error)
	// Sync returns once every request already issued to the display has
	// been processed.
	Sync() error
}
