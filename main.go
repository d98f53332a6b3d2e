package main

import (
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/arose/molstar/web"
)

func main() {
	presets := pflag.String("presets", "", "preset file (default ~/.config/molmesh/presets.toml)")
	pflag.Parse()

	app, err := NewApp(*presets)
	if err != nil {
		slog.Error("cannot start", "err", err)
		os.Exit(1)
	}
	err = wails.Run(&options.App{
		Title:            "molmesh",
		Width:            1280,
		Height:           800,
		AssetServer:      &assetserver.Options{Assets: web.Dist()},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind:             []interface{}{app},
	})
	if err != nil {
		slog.Error("wails", "err", err)
		os.Exit(1)
	}
}
