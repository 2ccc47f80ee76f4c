package render

import "image"

// Strategy is how a render call fills its destination.
type Strategy int

const (
	// StrategyNone paints nothing: the requested size is empty.
	StrategyNone Strategy = iota
	// StrategyTile paints every cell in place, repeating tiles as needed.
	StrategyTile
	// StrategyCrop composes at natural size offscreen and keeps the four
	// outer quadrants, dropping rows and columns from the middle.
	StrategyCrop
	// StrategyScale composes at natural size offscreen and resamples. Only
	// requests that ask for it scale; corners are not kept.
	StrategyScale
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyTile:
		return "tile"
	case StrategyCrop:
		return "crop"
	case StrategyScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Select picks the strategy for painting a set of the given natural size at
// size. Shape masks are never shrunk, so a requested mask always tiles.
// Anything smaller than natural crops unless scale asks for resampling.
func Select(size, natural image.Point, mask, scale bool) Strategy {
	switch {
	case size.X <= 0 || size.Y <= 0:
		return StrategyNone
	case mask || size.X >= natural.X && size.Y >= natural.Y:
		return StrategyTile
	case scale:
		return StrategyScale
	default:
		return StrategyCrop
	}
}

// cropQuadrants returns the four destination rectangles of a crop to size
// and the offset each one samples the composite at.
func cropQuadrants(size, layout image.Point) (dst [4]image.Rectangle, shift [4]image.Point) {
	w1, h1 := size.X/2, size.Y/2
	w2, h2 := (size.X+1)/2, (size.Y+1)/2
	sx, sy := layout.X-size.X, layout.Y-size.Y

	dst = [4]image.Rectangle{
		image.Rect(0, 0, w2, h2),
		image.Rect(w1, 0, w1+w2, h2),
		image.Rect(0, h1, w2, h1+h2),
		image.Rect(w1, h1, w1+w2, h1+h2),
	}
	shift = [4]image.Point{
		{0, 0},
		{sx, 0},
		{0, sy},
		{sx, sy},
	}
	return dst, shift
}
