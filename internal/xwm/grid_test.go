package xwm

import (
	"image"
	"testing"

	"github.com/ItsNotGoodName/x-sapwood/internal/xdisplay"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		count, xc, yc int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{7, 3, 3},
	}
	for _, tt := range tests {
		g := NewGrid(tt.count)
		if g.xc != tt.xc || g.yc != tt.yc {
			t.Errorf("NewGrid(%d) = %d×%d, want %d×%d", tt.count, g.xc, g.yc, tt.xc, tt.yc)
		}
		if g.Count() < tt.count {
			t.Errorf("NewGrid(%d) has only %d cells", tt.count, g.Count())
		}
	}
}

func TestGridCells(t *testing.T) {
	cells := NewGrid(3).Cells(image.Pt(101, 51))
	want := []image.Rectangle{
		image.Rect(0, 0, 50, 25), image.Rect(50, 0, 101, 25),
		image.Rect(0, 25, 50, 51), image.Rect(50, 25, 101, 51),
	}
	if len(cells) != len(want) {
		t.Fatalf("got %d cells, want %d", len(cells), len(want))
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, cells[i], want[i])
		}
	}

	if cells := NewGrid(0).Cells(image.Pt(10, 10)); cells != nil {
		t.Errorf("empty grid: %v", cells)
	}
}

func TestChunkRows(t *testing.T) {
	f := xdisplay.Format{Depth: 24, BitsPerPixel: 32, ScanlinePad: 32}
	tests := []struct {
		maxBytes, width, want int
	}{
		{262140, 100, (262140 - 24) / 400},
		{1024, 1000, 1},
		{424, 100, 1},
		{824, 100, 2},
	}
	for _, tt := range tests {
		if got := chunkRows(tt.maxBytes, tt.width, f); got != tt.want {
			t.Errorf("chunkRows(%d, %d) = %d, want %d", tt.maxBytes, tt.width, got, tt.want)
		}
	}
}
