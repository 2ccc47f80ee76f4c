package render

// Layers is a background tile set with an optional overlay drawn on top.
type Layers struct {
	Background Source
	Overlay    Source
}

// Render paints the background, leaving out its center unless drawCenter,
// and then the overlay when the center is drawn. req.Components and
// req.Rects are ignored; the overlay never writes req.Mask. It reports
// whether the background painted anything, which is when req.Mask holds a
// usable shape.
func (r *Renderer) RenderLayers(l Layers, req Request, drawCenter bool) bool {
	req.Rects = nil

	painted := false
	if l.Background != nil {
		req.Components = All
		if !drawCenter {
			req.Components |= Center
		}
		painted = r.Render(l.Background, req) != StrategyNone
	}

	if l.Overlay != nil && drawCenter {
		req.Components = All
		req.Mask = nil
		r.Render(l.Overlay, req)
	}

	return painted
}

// RenderLayers paints l with the default Renderer.
func RenderLayers(l Layers, req Request, drawCenter bool) bool {
	return defaultRenderer.RenderLayers(l, req, drawCenter)
}
