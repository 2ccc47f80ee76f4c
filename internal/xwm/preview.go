package xwm

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-sapwood/internal/render"
	"github.com/ItsNotGoodName/x-sapwood/internal/xdisplay"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/thejerf/suture/v4"
)

const (
	keyEscape = 9
	keyQ      = 24

	cellPadding = 8
)

var background = color.RGBA{0x30, 0x30, 0x30, 0xff}

// Entry is one border image in the preview.
type Entry struct {
	Name       string
	Layers     render.Layers
	DrawCenter bool
	// Scale resamples instead of cropping when a cell is too small.
	Scale bool
}

// Preview is a window that paints every entry in its own grid cell and paints
// again at the new size whenever the window is resized.
//
// The X connection has a single event queue, so one receiver feeds every run
// of Serve; a restarted Serve picks up where the previous one stopped.
type Preview struct {
	conn     *xgb.Conn
	renderer *render.Renderer
	entries  []Entry
	grid     Grid
	size     image.Point

	receive   func(ctx context.Context, eventC chan<- any)
	startOnce sync.Once
	eventC    chan any
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewPreview(conn *xgb.Conn, renderer *render.Renderer, size image.Point, entries []Entry) *Preview {
	ctx, cancel := context.WithCancel(context.Background())
	return &Preview{
		conn:     conn,
		renderer: renderer,
		entries:  entries,
		grid:     NewGrid(len(entries)),
		size:     size,
		receive: func(ctx context.Context, eventC chan<- any) {
			ReceiveEvents(ctx, conn, eventC)
		},
		eventC: make(chan any),
		ctx:    ctx,
		cancel: cancel,
	}
}

// events starts the receiver on first use.
func (p *Preview) events() <-chan any {
	p.startOnce.Do(func() {
		go p.receive(p.ctx, p.eventC)
	})
	return p.eventC
}

// Close stops the event receiver. It returns once the X connection delivers
// its next event or is closed.
func (p *Preview) Close() {
	p.cancel()
}

func (p *Preview) String() string {
	return "xwm.Preview"
}

// Serve runs until the window is closed, which ends the whole supervisor tree.
func (p *Preview) Serve(ctx context.Context) error {
	slog := slog.With("func", "xwm.Preview.Serve")

	screen := xproto.Setup(p.conn).DefaultScreen(p.conn)
	format, err := xdisplay.FormatFor(xproto.Setup(p.conn), screen.RootDepth)
	if err != nil {
		slog.Error("Cannot draw on the default screen", "error", err)
		return suture.ErrTerminateSupervisorTree
	}

	win, err := CreateWindow(p.conn, uint16(p.size.X), uint16(p.size.Y), "sapwood")
	if err != nil {
		return err
	}
	defer win.Destroy(p.conn)

	busy, err := createCursor(p.conn, cursorWatch)
	if err != nil {
		return err
	}
	defer xproto.FreeCursor(p.conn, busy)

	gc, err := xproto.NewGcontextId(p.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(p.conn, gc, xproto.Drawable(win.WID), 0, nil).Check(); err != nil {
		return err
	}
	defer xproto.FreeGC(p.conn, gc)

	eventC := p.events()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventC:
			if !ok {
				slog.Error("X connection closed")
				return suture.ErrTerminateSupervisorTree
			}

			redraw, quit := p.handle(win.WID, ev)
			if quit {
				return suture.ErrTerminateSupervisorTree
			}
			if redraw {
				if err := p.draw(win, gc, format, busy); err != nil {
					return err
				}
			}
		}
	}
}

// handle applies ev to the preview of window wid and reports whether the
// frame must be painted again and whether the preview is done. Events for
// other windows, such as one destroyed by an earlier run, are ignored.
func (p *Preview) handle(wid xproto.Window, ev any) (redraw, quit bool) {
	slog := slog.With("func", "xwm.Preview.handle")

	switch ev := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if ev.Window != wid {
			return false, false
		}
		size := image.Pt(int(ev.Width), int(ev.Height))
		if size == p.size {
			return false, false
		}
		slog.Debug("ConfigureNotifyEvent", "width", ev.Width, "height", ev.Height)
		p.size = size
		return true, false
	case xproto.ExposeEvent:
		return ev.Window == wid && ev.Count == 0, false
	case xproto.KeyPressEvent:
		slog.Debug("KeyPressEvent", "detail", ev.Detail)
		if ev.Event == wid && (ev.Detail == keyQ || ev.Detail == keyEscape) {
			slog.Debug("exit: quit key pressed")
			return false, true
		}
	case xproto.DestroyNotifyEvent:
		if ev.Window != wid {
			return false, false
		}
		slog.Debug("exit: destroy notify event")
		return false, true
	default:
		slog.Debug("unknown event", "event", ev)
	}
	return false, false
}

// draw shows the busy cursor while the frame is painted and uploaded.
func (p *Preview) draw(win Window, gc xproto.Gcontext, format xdisplay.Format, busy xproto.Cursor) error {
	setCursor(p.conn, win, busy)
	defer setCursor(p.conn, win, win.cursor)

	frame := p.Frame()
	return PutImage(p.conn, xproto.Drawable(win.WID), gc, format, frame, image.Point{})
}

// Frame paints every entry at the current window size.
func (p *Preview) Frame() *image.RGBA {
	frame := image.NewRGBA(image.Rectangle{Max: p.size})
	draw.Draw(frame, frame.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	cells := p.grid.Cells(p.size)
	for i, e := range p.entries {
		cell := cells[i].Inset(cellPadding)
		if cell.Empty() {
			continue
		}
		p.renderer.RenderLayers(e.Layers, render.Request{
			Dst:    frame,
			Origin: cell.Min,
			Size:   cell.Size(),
			Scale:  e.Scale,
		}, e.DrawCenter)
	}

	return frame
}
