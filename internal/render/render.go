// Package render paints 3×3 border tile sets into destination rectangles of
// any size.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

// Request describes one paint call.
type Request struct {
	Dst    draw.Image
	Origin image.Point
	Size   image.Point

	// Mask, when set, receives the shape of the painted area. Cells without
	// a mask leave it untouched.
	Mask       *image.Alpha
	MaskOrigin image.Point

	Clip *image.Rectangle

	Components Component
	// Rects overrides Slice. They must be laid out at Size when the call
	// tiles and at max(Size, natural) per axis otherwise, both relative to
	// Origin.
	Rects []Rect

	// Scale resamples the composite instead of cropping it when Size is
	// smaller than natural. Corners are not kept.
	Scale bool
}

func (req Request) bounds() image.Rectangle {
	return image.Rectangle{Min: req.Origin, Max: req.Origin.Add(req.Size)}
}

type Renderer struct {
	// DebugScaling logs every resampled paint and tints it yellow.
	DebugScaling bool
	Logger       *slog.Logger

	newRGBA  func(r image.Rectangle) *image.RGBA
	newAlpha func(r image.Rectangle) *image.Alpha
}

var defaultRenderer Renderer

// Render paints src with the default Renderer.
func Render(src Source, req Request) Strategy {
	return defaultRenderer.Render(src, req)
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Renderer) allocRGBA(rect image.Rectangle) *image.RGBA {
	if r.newRGBA != nil {
		return r.newRGBA(rect)
	}
	return image.NewRGBA(rect)
}

func (r *Renderer) allocAlpha(rect image.Rectangle) *image.Alpha {
	if r.newAlpha != nil {
		return r.newAlpha(rect)
	}
	return image.NewAlpha(rect)
}

// Render paints src as described by req and reports the strategy it used.
func (r *Renderer) Render(src Source, req Request) Strategy {
	natural := src.Size()
	strategy := Select(req.Size, natural, req.Mask != nil, req.Scale)

	switch strategy {
	case StrategyNone:
		return strategy
	case StrategyTile:
		rects := req.Rects
		if rects == nil {
			rects = Slice(src, req.Origin, req.Size, req.Components)
		}
		paint(req.Dst, req.bounds(), req.Clip, req.Mask, req.Origin.Sub(req.MaskOrigin), rects)
		return strategy
	}

	layout := image.Pt(max(req.Size.X, natural.X), max(req.Size.Y, natural.Y))

	var rects []Rect
	if req.Rects == nil {
		rects = Slice(src, image.Point{}, layout, req.Components)
	} else {
		rects = make([]Rect, len(req.Rects))
		for i, rc := range req.Rects {
			rc.Dest = rc.Dest.Sub(req.Origin)
			rects[i] = rc
		}
	}

	tmp := r.allocRGBA(image.Rectangle{Max: layout})
	var tmpMask *image.Alpha
	for _, rc := range rects {
		if rc.Mask != nil {
			tmpMask = r.allocAlpha(image.Rectangle{Max: layout})
			draw.Draw(tmpMask, tmpMask.Bounds(), image.Opaque, image.Point{}, draw.Src)
			break
		}
	}

	paint(tmp, tmp.Bounds(), nil, tmpMask, image.Point{}, rects)

	var out *image.RGBA
	var outMask *image.Alpha
	if strategy == StrategyCrop {
		out, outMask = r.crop(tmp, tmpMask, req.Size, layout)
	} else {
		if r.DebugScaling {
			r.logger().Warn("Scaling pixmap",
				"requested", req.Size.String(),
				"real", natural.String())
			tint := image.NewUniform(color.NRGBA{0xff, 0xff, 0x00, 0x40})
			draw.Draw(tmp, tmp.Bounds(), tint, image.Point{}, draw.Over)
		}
		out, outMask = r.scale(tmp, tmpMask, req.Size)
	}

	dr := req.bounds()
	if req.Clip != nil {
		dr = dr.Intersect(*req.Clip)
	}
	if dr.Empty() {
		return strategy
	}
	sp := dr.Min.Sub(req.Origin)
	if outMask != nil {
		draw.DrawMask(req.Dst, dr, out, sp, outMask, sp, draw.Over)
	} else {
		draw.Draw(req.Dst, dr, out, sp, draw.Over)
	}

	return strategy
}

func (r *Renderer) crop(tmp *image.RGBA, tmpMask *image.Alpha, size, layout image.Point) (*image.RGBA, *image.Alpha) {
	bounds := image.Rectangle{Max: size}
	dst, shift := cropQuadrants(size, layout)

	out := r.allocRGBA(bounds)
	for i := range dst {
		draw.Draw(out, dst[i], tmp, dst[i].Min.Add(shift[i]), draw.Src)
	}
	if tmpMask == nil {
		return out, nil
	}

	outMask := r.allocAlpha(bounds)
	for i := range dst {
		draw.Draw(outMask, dst[i], tmpMask, dst[i].Min.Add(shift[i]), draw.Src)
	}
	return out, outMask
}

func (r *Renderer) scale(tmp *image.RGBA, tmpMask *image.Alpha, size image.Point) (*image.RGBA, *image.Alpha) {
	bounds := image.Rectangle{Max: size}

	out := r.allocRGBA(bounds)
	xdraw.BiLinear.Scale(out, bounds, tmp, tmp.Bounds(), xdraw.Src, nil)
	if tmpMask == nil {
		return out, nil
	}

	outMask := r.allocAlpha(bounds)
	xdraw.BiLinear.Scale(outMask, bounds, tmpMask, tmpMask.Bounds(), xdraw.Src, nil)
	return out, outMask
}

// paint fills every rect, limited to bounds, in order. With a mask, masked
// cells are drawn through their own mask and copy it into mask, which is
// offset by maskOffset from dst; the clip does not apply to the mask.
func paint(dst draw.Image, bounds image.Rectangle, clip *image.Rectangle, mask *image.Alpha, maskOffset image.Point, rects []Rect) {
	if mask != nil {
		for _, rc := range rects {
			if rc.Tile == nil || rc.Mask == nil {
				continue
			}
			area := rc.Dest.Intersect(bounds)
			tile(mask, area.Sub(maskOffset), rc.Mask, rc.Dest.Min.Sub(maskOffset), nil, draw.Src)
		}
	}

	for _, rc := range rects {
		if rc.Tile == nil {
			continue
		}
		area := rc.Dest.Intersect(bounds)
		if clip != nil {
			area = area.Intersect(*clip)
		}
		var m image.Image
		if mask != nil {
			m = rc.Mask
		}
		tile(dst, area, rc.Tile, rc.Dest.Min, m, draw.Over)
	}
}

// tile fills area of dst with src repeated from anchor, optionally through
// mask which repeats the same way.
func tile(dst draw.Image, area image.Rectangle, src image.Image, anchor image.Point, mask image.Image, op draw.Op) {
	sb := src.Bounds()
	tw, th := sb.Dx(), sb.Dy()
	if tw <= 0 || th <= 0 || area.Empty() {
		return
	}

	x0 := anchor.X + floorDiv(area.Min.X-anchor.X, tw)*tw
	y0 := anchor.Y + floorDiv(area.Min.Y-anchor.Y, th)*th

	for y := y0; y < area.Max.Y; y += th {
		for x := x0; x < area.Max.X; x += tw {
			cell := image.Rect(x, y, x+tw, y+th).Intersect(area)
			if cell.Empty() {
				continue
			}
			off := cell.Min.Sub(image.Pt(x, y))
			if mask != nil {
				draw.DrawMask(dst, cell, src, sb.Min.Add(off), mask, mask.Bounds().Min.Add(off), op)
			} else {
				draw.Draw(dst, cell, src, sb.Min.Add(off), op)
			}
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
