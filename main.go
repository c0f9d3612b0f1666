package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"photomosaic/compose"
	"photomosaic/library"
)

type cli struct {
	Config    kong.ConfigFlag `help:"JSON file with default flag values"`
	LogLevel  string          `help:"Minimum log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string          `help:"Log output format" enum:"text,json" default:"text"`

	Index   library.CLICmd `cmd:"" help:"Reduce a library folder to its colour cache"`
	Compose compose.CLICmd `cmd:"" help:"Rebuild an image as a mosaic of library images"`
}

func setupLogger(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	var conf cli
	kctx := kong.Parse(&conf,
		kong.Name("photomosaic"),
		kong.Description("Rebuild pictures out of a library of smaller pictures."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON),
	)

	setupLogger(conf.LogLevel, conf.LogFormat)
	slog.Debug("running", "command", kctx.Command())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run()
	stop()
	kctx.FatalIfErrorf(err)
}
