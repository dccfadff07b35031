package main

import (
	"log"
	"log/slog"
	"os"

	"xliff-manager/internal/bootstrap"
)

// Serves ./frontend from disk, for working on the UI without rebuilding.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
