package xwm

import "image"

// Grid splits an area into equal cells, row by row.
type Grid struct {
	xc int
	yc int
}

// NewGrid returns the smallest near-square grid with at least count cells.
func NewGrid(count int) Grid {
	xc, yc := 0, 0
	for xc*yc < count {
		xc++
		if xc*yc >= count {
			break
		}
		yc++
	}

	return Grid{
		xc: xc,
		yc: yc,
	}
}

func (g Grid) Count() int {
	return g.xc * g.yc
}

// Cells lays the grid over size. The last column and row take the remainder.
func (g Grid) Cells(size image.Point) []image.Rectangle {
	if g.Count() == 0 {
		return nil
	}

	fw := size.X / g.xc
	fh := size.Y / g.yc

	cells := make([]image.Rectangle, 0, g.Count())
	for i := 0; i < g.yc; i++ {
		y0, y1 := fh*i, fh*(i+1)
		if i == g.yc-1 {
			y1 = size.Y
		}
		for j := 0; j < g.xc; j++ {
			x0, x1 := fw*j, fw*(j+1)
			if j == g.xc-1 {
				x1 = size.X
			}
			cells = append(cells, image.Rect(x0, y0, x1, y1))
		}
	}
	return cells
}
