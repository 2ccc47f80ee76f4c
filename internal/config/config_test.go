package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestYAMLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sapwood.yaml")
	driver := NewYAML(path)

	store, err := NewStore(driver)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := driver.Exists(); !ok {
		t.Fatal("NewStore did not write the default config")
	}

	err = store.UpdateConfig(func(cfg Config) (Config, error) {
		cfg.Socket = "@sapwood-test"
		cfg.Images = append(cfg.Images, Image{
			Name:    "button",
			File:    "/usr/share/themes/default/button.png",
			Border:  Border{Left: 8, Right: 8, Top: 6, Bottom: 6},
			Overlay: &Overlay{File: "/usr/share/themes/default/focus.png"},
		})
		return cfg, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary file left behind: %v", err)
	}

	cfg, err := store.GetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Socket != "@sapwood-test" {
		t.Errorf("socket = %q", cfg.Socket)
	}
	img, ok := cfg.Image("button")
	if !ok {
		t.Fatal("button not found")
	}
	if img.Border != (Border{8, 8, 6, 6}) {
		t.Errorf("border = %+v", img.Border)
	}
	if img.Overlay == nil || img.Overlay.File != "/usr/share/themes/default/focus.png" {
		t.Errorf("overlay = %+v", img.Overlay)
	}
	if !img.ShouldDrawCenter() {
		t.Error("draw center should default to true")
	}
	if _, ok := cfg.Image("missing"); ok {
		t.Error("found an image that does not exist")
	}
}

func TestYAMLRead(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewYAML(filepath.Join(dir, "missing.yaml")).Read()
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Socket != "" || len(cfg.Images) != 0 {
		t.Errorf("missing file: got %+v, want defaults", cfg)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAML(empty).Read(); err != nil {
		t.Errorf("empty file: %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("images: {name: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAML(bad).Read(); err == nil {
		t.Error("malformed file: no error")
	}

	hand := filepath.Join(dir, "hand.yaml")
	if err := os.WriteFile(hand, []byte(`
debug: [scaling]
images:
  - name: frame
    file: frame.png
    border: {left: 1, right: 2, top: 3, bottom: 4}
    depth: 24
    draw_center: false
`), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err = NewYAML(hand).Read()
	if err != nil {
		t.Fatal(err)
	}
	img, ok := cfg.Image("frame")
	if !ok {
		t.Fatal("frame not found")
	}
	if img.Border != (Border{1, 2, 3, 4}) || img.Depth != 24 || img.ShouldDrawCenter() {
		t.Errorf("frame = %+v", img)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		images []Image
		ok     bool
	}{
		{"empty", nil, true},
		{"valid", []Image{{Name: "a", File: "a.png"}, {Name: "b", File: "b.png"}}, true},
		{"no name", []Image{{File: "a.png"}}, false},
		{"duplicate", []Image{{Name: "a", File: "a.png"}, {Name: "a", File: "b.png"}}, false},
		{"no file", []Image{{Name: "a"}}, false},
		{"negative border", []Image{{Name: "a", File: "a.png", Border: Border{Top: -1}}}, false},
		{"negative depth", []Image{{Name: "a", File: "a.png", Depth: -1}}, false},
		{"overlay without file", []Image{{Name: "a", File: "a.png", Overlay: &Overlay{}}}, false},
	}
	for _, tt := range tests {
		err := Config{Images: tt.images}.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v", tt.name, err)
		}
	}
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	driver := &Memory{}
	store, err := NewStore(driver)
	if err != nil {
		t.Fatal(err)
	}

	err = store.UpdateConfig(func(cfg Config) (Config, error) {
		cfg.Images = []Image{{Name: "a"}}
		return cfg, nil
	})
	if err == nil {
		t.Fatal("invalid config was written")
	}

	cfg, _ := driver.Read()
	if len(cfg.Images) != 0 {
		t.Errorf("driver holds %+v", cfg.Images)
	}

	fail := errors.New("fail")
	if err := store.UpdateConfig(func(cfg Config) (Config, error) { return cfg, fail }); !errors.Is(err, fail) {
		t.Errorf("UpdateConfig() = %v, want %v", err, fail)
	}
}

func TestParseDebug(t *testing.T) {
	tests := []struct {
		in   string
		want DebugFlags
	}{
		{"", 0},
		{"scaling", DebugScaling},
		{"XTRAPS", DebugXTraps},
		{"scaling,xtraps", DebugAll},
		{"scaling:xtraps", DebugAll},
		{" scaling  xtraps ", DebugAll},
		{"all", DebugAll},
		{"bogus,scaling", DebugScaling},
		{",,,", 0},
	}
	for _, tt := range tests {
		if got := ParseDebug(tt.in); got != tt.want {
			t.Errorf("ParseDebug(%q) = %b, want %b", tt.in, got, tt.want)
		}
	}
}

func TestDebugFlags(t *testing.T) {
	env := map[string]string{EnvDebug: "xtraps"}
	getenv := func(k string) string { return env[k] }

	flags := Config{Debug: []string{"scaling"}}.debugFlags(getenv)
	if !flags.Has(DebugScaling) || !flags.Has(DebugXTraps) {
		t.Errorf("flags = %b, want both", flags)
	}
	if flags := (Config{}).debugFlags(func(string) string { return "" }); flags.Has(DebugScaling) || flags.Has(DebugXTraps) {
		t.Errorf("no configuration enabled %b", flags)
	}
}

func TestSocketPath(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		socket string
		want   string
	}{
		{"default", map[string]string{"DISPLAY": ":0"}, "", "/tmp/sapwood-:0"},
		{"config", map[string]string{"DISPLAY": ":0"}, "/run/sapwood.sock", "/run/sapwood.sock"},
		{"env", map[string]string{"DISPLAY": ":0", EnvSocket: "@sapwood"}, "/run/sapwood.sock", "@sapwood"},
	}
	for _, tt := range tests {
		got := Config{Socket: tt.socket}.socketPath(func(k string) string { return tt.env[k] })
		if got != tt.want {
			t.Errorf("%s: socketPath() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
