package main

import (
	"embed"
	"log"
	"log/slog"
	"os"

	"xliff-manager/internal/bootstrap"
)

//go:embed all:frontend
var appAssets embed.FS

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := bootstrap.NewWithAssets(appAssets)
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
