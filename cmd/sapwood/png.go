package main

import (
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/ItsNotGoodName/x-sapwood/internal/render"
	"github.com/ItsNotGoodName/x-sapwood/internal/xwm"
)

// renderImage paints e at size on a transparent canvas. With shaped, the
// shape mask written by the background becomes the alpha channel.
func renderImage(r *render.Renderer, e xwm.Entry, size image.Point, shaped bool) image.Image {
	bounds := image.Rectangle{Max: size}
	canvas := image.NewRGBA(bounds)

	req := render.Request{
		Dst:   canvas,
		Size:  size,
		Scale: e.Scale,
	}

	var mask *image.Alpha
	if shaped {
		mask = image.NewAlpha(bounds)
		draw.Draw(mask, bounds, image.Opaque, image.Point{}, draw.Src)
		req.Mask = mask
	}

	painted := r.RenderLayers(e.Layers, req, e.DrawCenter)
	if mask == nil || !painted {
		return canvas
	}

	out := image.NewRGBA(bounds)
	draw.DrawMask(out, bounds, canvas, image.Point{}, mask, image.Point{}, draw.Src)
	return out
}

func writePNG(path string, img image.Image) error {
	tmp := path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
