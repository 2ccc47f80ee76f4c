package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ItsNotGoodName/x-sapwood/internal/build"
	"github.com/ItsNotGoodName/x-sapwood/internal/config"
	"github.com/ItsNotGoodName/x-sapwood/internal/core"
	"github.com/ItsNotGoodName/x-sapwood/internal/pixmap"
	"github.com/ItsNotGoodName/x-sapwood/internal/render"
	"github.com/ItsNotGoodName/x-sapwood/internal/xdisplay"
	"github.com/ItsNotGoodName/x-sapwood/internal/xwm"
	"github.com/ItsNotGoodName/x-sapwood/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/jezek/xgb"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug   bool   `doc:"enable debug"`
	Config  string `doc:"config file" default:".sapwood.yaml"`
	Socket  string `doc:"server socket, overrides the config file and SAPWOOD_SOCKET"`
	Image   string `doc:"comma separated names of images from the config file"`
	File    string `doc:"image file to open instead of a configured image"`
	Border  string `doc:"left,right,top,bottom border of --file" default:"0,0,0,0"`
	Depth   int    `doc:"color depth hint for --file, 0 for the server default"`
	Overlay string `doc:"overlay image file for --file, drawn over the center"`
	Width   int    `doc:"output width, 0 for the natural width"`
	Height  int    `doc:"output height, 0 for the natural height"`
	Out     string `doc:"write the first image to this PNG file"`
	Shaped  bool   `doc:"use the shape mask as the PNG alpha channel"`
	Scale   bool   `doc:"resample instead of cropping when smaller than the image"`
	Preview bool   `doc:"show every image in a window that follows its size"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			return run(ctx, options)
		})
	})

	cli.Root().Use = "sapwood"
	cli.Root().Version = build.Current.String()

	cli.Run()
}

func run(ctx context.Context, options *Options) error {
	configFilePath, err := filepath.Abs(options.Config)
	if err != nil {
		return err
	}

	store, err := config.NewStore(config.NewYAML(configFilePath))
	if err != nil {
		return err
	}

	cfg, err := store.GetConfig()
	if err != nil {
		return err
	}

	images, err := selectImages(cfg, options)
	if err != nil {
		return err
	}

	flags := cfg.DebugFlags()
	socket := options.Socket
	if socket == "" {
		socket = cfg.SocketPath()
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	client := pixmap.NewClient(socket, xdisplay.New(conn, flags.Has(config.DebugXTraps)))
	defer client.Close()

	var entries []xwm.Entry
	for _, img := range images {
		layers, release, err := openLayers(ctx, client, img)
		if err != nil {
			return fmt.Errorf("%s: %w", img.Name, err)
		}
		defer release()

		entries = append(entries, xwm.Entry{
			Name:       img.Name,
			Layers:     layers,
			DrawCenter: img.ShouldDrawCenter(),
			Scale:      img.Scale || options.Scale,
		})
	}

	renderer := &render.Renderer{DebugScaling: flags.Has(config.DebugScaling)}

	first := entries[0]
	size := outputSize(first.Layers.Background.Size(), options.Width, options.Height)

	if options.Out != "" {
		out := renderImage(renderer, first, size, options.Shaped)
		if err := writePNG(options.Out, out); err != nil {
			return err
		}
		slog.Info("Wrote image", "name", first.Name, "file", options.Out, "size", size.String())
	}

	if !options.Preview {
		return nil
	}

	preview := xwm.NewPreview(conn, renderer, size, entries)
	defer preview.Close()

	super := sutureext.NewSimple("sapwood")
	sutureext.Add(super, preview)
	return sutureext.Serve(ctx, super)
}

// selectImages returns the configured images named by --image, or a single
// image described by --file.
func selectImages(cfg config.Config, options *Options) ([]config.Image, error) {
	if options.File != "" {
		b, err := core.ParseBorder(options.Border)
		if err != nil {
			return nil, fmt.Errorf("border: %w", err)
		}
		border := config.Border{Left: b[0], Right: b[1], Top: b[2], Bottom: b[3]}

		img := config.Image{
			Name:   filepath.Base(options.File),
			File:   options.File,
			Border: border,
			Depth:  options.Depth,
		}
		if options.Overlay != "" {
			img.Overlay = &config.Overlay{File: options.Overlay, Border: border}
		}
		return []config.Image{img}, nil
	}

	if options.Image == "" {
		return nil, errors.New("nothing to open: pass --image or --file")
	}

	var images []config.Image
	for _, name := range strings.Split(options.Image, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		img, ok := cfg.Image(name)
		if !ok {
			return nil, fmt.Errorf("image %q not in the config file", name)
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return nil, errors.New("nothing to open: --image names no image")
	}
	return images, nil
}

func openLayers(ctx context.Context, client *pixmap.Client, img config.Image) (render.Layers, func(), error) {
	slog := slog.With("image", img.Name)

	background, err := client.Open(ctx, pixmap.Spec{
		File:   img.File,
		Border: pixmap.Border(img.Border),
		Depth:  img.Depth,
	})
	if err != nil {
		return render.Layers{}, nil, err
	}
	if background.Degraded() {
		slog.Warn("Some cells could not be bound", "errors", len(background.Errors()))
	}
	layers := render.Layers{Background: background}

	if img.Overlay == nil {
		return layers, background.Release, nil
	}

	overlay, err := client.Open(ctx, pixmap.Spec{
		File:   img.Overlay.File,
		Border: pixmap.Border(img.Overlay.Border),
		Depth:  img.Depth,
	})
	if err != nil {
		background.Release()
		return render.Layers{}, nil, fmt.Errorf("overlay: %w", err)
	}
	if overlay.Degraded() {
		slog.Warn("Some overlay cells could not be bound", "errors", len(overlay.Errors()))
	}
	layers.Overlay = overlay

	return layers, func() {
		overlay.Release()
		background.Release()
	}, nil
}

// outputSize fills unset dimensions from the natural size.
func outputSize(natural image.Point, width, height int) image.Point {
	size := natural
	if width > 0 {
		size.X = width
	}
	if height > 0 {
		size.Y = height
	}
	return size
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
