package xwm

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-sapwood/internal/render"
	"github.com/jezek/xgb/xproto"
)

type solid struct {
	tile *image.RGBA
}

func newSolid(c color.RGBA) solid {
	tile := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(tile, tile.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return solid{tile: tile}
}

func (s solid) Size() image.Point { return image.Pt(12, 12) }

func (s solid) Borders() (int, int, int, int) { return 4, 4, 4, 4 }

func (s solid) Cell(int, int) (image.Image, image.Image) { return s.tile, nil }

func TestPreviewFrame(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	green := color.RGBA{0, 0xff, 0, 0xff}

	p := NewPreview(nil, &render.Renderer{}, image.Pt(200, 100), []Entry{
		{Name: "red", Layers: render.Layers{Background: newSolid(red)}, DrawCenter: true},
		{Name: "green", Layers: render.Layers{Background: newSolid(green)}, DrawCenter: false},
	})

	frame := p.Frame()
	if got := frame.Bounds().Size(); got != image.Pt(200, 100) {
		t.Fatalf("frame size = %v", got)
	}
	if got := frame.RGBAAt(2, 2); got != background {
		t.Errorf("padding = %v, want background", got)
	}
	if got := frame.RGBAAt(50, 50); got != red {
		t.Errorf("first cell center = %v, want %v", got, red)
	}
	if got := frame.RGBAAt(108, 50); got != green {
		t.Errorf("second cell border = %v, want %v", got, green)
	}
	if got := frame.RGBAAt(150, 50); got != background {
		t.Errorf("second cell center = %v, want background", got)
	}

	// Resizing paints at the new size.
	p.size = image.Pt(40, 20)
	if got := p.Frame().Bounds().Size(); got != image.Pt(40, 20) {
		t.Errorf("resized frame = %v", got)
	}
}

func TestPreviewSharesReceiver(t *testing.T) {
	p := NewPreview(nil, &render.Renderer{}, image.Pt(10, 10), nil)
	defer p.Close()

	starts := make(chan struct{}, 4)
	source := make(chan any)
	p.receive = func(ctx context.Context, eventC chan<- any) {
		starts <- struct{}{}
		for ev := range source {
			select {
			case <-ctx.Done():
				return
			case eventC <- ev:
			}
		}
	}

	// Two runs of Serve, as after a restart, read from one receiver.
	first := p.events()
	second := p.events()
	if first != second {
		t.Fatal("restarted run got a different event channel")
	}

	go func() { source <- xproto.ExposeEvent{Window: 1} }()
	select {
	case ev := <-second:
		if _, ok := ev.(xproto.ExposeEvent); !ok {
			t.Errorf("got %T, want ExposeEvent", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}

	close(source)
	if n := len(starts); n != 1 {
		t.Errorf("receiver started %d times, want 1", n)
	}
}

func TestPreviewHandle(t *testing.T) {
	const (
		current xproto.Window = 2
		stale   xproto.Window = 1
	)
	tests := []struct {
		name   string
		ev     any
		redraw bool
		quit   bool
	}{
		{"resize", xproto.ConfigureNotifyEvent{Window: current, Width: 30, Height: 20}, true, false},
		{"same size", xproto.ConfigureNotifyEvent{Window: current, Width: 10, Height: 10}, false, false},
		{"stale resize", xproto.ConfigureNotifyEvent{Window: stale, Width: 30, Height: 20}, false, false},
		{"expose", xproto.ExposeEvent{Window: current}, true, false},
		{"expose more to come", xproto.ExposeEvent{Window: current, Count: 2}, false, false},
		{"stale expose", xproto.ExposeEvent{Window: stale}, false, false},
		{"quit key", xproto.KeyPressEvent{Event: current, Detail: keyQ}, false, true},
		{"escape", xproto.KeyPressEvent{Event: current, Detail: keyEscape}, false, true},
		{"other key", xproto.KeyPressEvent{Event: current, Detail: 38}, false, false},
		{"destroy", xproto.DestroyNotifyEvent{Window: current}, false, true},
		{"stale destroy", xproto.DestroyNotifyEvent{Window: stale}, false, false},
		{"unknown", xproto.MapNotifyEvent{Window: current}, false, false},
	}
	for _, tt := range tests {
		p := NewPreview(nil, &render.Renderer{}, image.Pt(10, 10), nil)
		redraw, quit := p.handle(current, tt.ev)
		if redraw != tt.redraw || quit != tt.quit {
			t.Errorf("%s: handle() = %v, %v, want %v, %v", tt.name, redraw, quit, tt.redraw, tt.quit)
		}
		p.Close()
	}

	p := NewPreview(nil, &render.Renderer{}, image.Pt(10, 10), nil)
	defer p.Close()
	p.handle(current, xproto.ConfigureNotifyEvent{Window: current, Width: 30, Height: 20})
	if p.size != image.Pt(30, 20) {
		t.Errorf("size after resize = %v", p.size)
	}
}
