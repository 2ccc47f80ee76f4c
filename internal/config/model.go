package config

var defaultConfig = Config{
	Socket: "",
	Debug:  []string{},
	Images: []Image{},
}

type Config struct {
	// Socket overrides the default server socket path. A leading @ names an
	// abstract socket.
	Socket string   `yaml:"socket"`
	Debug  []string `yaml:"debug"`
	Images []Image  `yaml:"images"`
}

// Image is a named border image, optionally with an overlay drawn over its
// center.
type Image struct {
	Name       string   `yaml:"name"`
	File       string   `yaml:"file"`
	Border     Border   `yaml:"border"`
	Depth      int      `yaml:"depth"`
	Overlay    *Overlay `yaml:"overlay,omitempty"`
	DrawCenter *bool    `yaml:"draw_center,omitempty"`
	// Scale resamples the image when drawn smaller than its natural size
	// instead of cropping around the corners.
	Scale bool `yaml:"scale,omitempty"`
}

type Overlay struct {
	File   string `yaml:"file"`
	Border Border `yaml:"border"`
}

type Border struct {
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
}

// Image returns the image named name.
func (c Config) Image(name string) (Image, bool) {
	for _, img := range c.Images {
		if img.Name == name {
			return img, true
		}
	}
	return Image{}, false
}

// ShouldDrawCenter defaults to true.
func (i Image) ShouldDrawCenter() bool {
	return i.DrawCenter == nil || *i.DrawCenter
}
