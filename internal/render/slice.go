package render

import "image"

// Source is a 3×3 tile set. *pixmap.TileSet implements it.
type Source interface {
	// Size is the natural size of the whole border image.
	Size() image.Point
	Borders() (left, right, top, bottom int)
	// Cell returns the tile at column col and row row and its optional
	// mask. A nil tile means the region is not drawn.
	Cell(col, row int) (tile, mask image.Image)
}

// Component selects regions of the 3×3 grid.
type Component uint

const (
	NorthWest Component = 1 << iota
	North
	NorthEast
	West
	Center
	East
	SouthEast
	South
	SouthWest
	// All selects every region. Combined with other bits, those bits name
	// the regions to leave out: All|Center draws the frame only.
	All
)

var cellComponent = [3][3]Component{
	{NorthWest, North, NorthEast},
	{West, Center, East},
	{SouthWest, South, SouthEast},
}

// Resolve returns the plain set of regions c selects. The zero value selects
// everything.
func (c Component) Resolve() Component {
	if c == 0 {
		return All - 1
	}
	if c&All != 0 {
		return (All - 1) &^ c
	}
	return c
}

// Rect is one positioned cell. The tile repeats from Dest.Min to fill Dest.
type Rect struct {
	Dest image.Rectangle
	Tile image.Image
	Mask image.Image
}

// Slice lays src out over a layout-sized area at origin. Corner and edge
// cells keep their natural thickness pinned to their edge; the middle row and
// column fill what is left and disappear when nothing is left. Rects come
// back row by row, top to bottom, and empty cells are skipped.
func Slice(src Source, origin, layout image.Point, components Component) []Rect {
	left, right, top, bottom := src.Borders()
	xs := [4]int{0, left, layout.X - right, layout.X}
	ys := [4]int{0, top, layout.Y - bottom, layout.Y}
	components = components.Resolve()

	rects := make([]Rect, 0, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			if components&cellComponent[row][col] == 0 {
				continue
			}

			// Not image.Rect: an inverted middle must stay empty rather
			// than be canonicalised.
			r := image.Rectangle{
				Min: image.Pt(xs[col], ys[row]),
				Max: image.Pt(xs[col+1], ys[row+1]),
			}
			if r.Empty() {
				continue
			}

			tile, mask := src.Cell(col, row)
			if tile == nil {
				continue
			}

			rects = append(rects, Rect{
				Dest: r.Add(origin),
				Tile: tile,
				Mask: mask,
			})
		}
	}

	return rects
}
