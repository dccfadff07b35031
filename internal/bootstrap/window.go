package bootstrap

import (
	"context"

	"xliff-manager/internal/domain"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// WindowBoundsChanged records the window rectangle; bursts of resize events
// collapse into one write.
func (a *App) WindowBoundsChanged(bounds domain.Bounds) {
	if !bounds.Valid() {
		return
	}

	a.mu.Lock()
	a.bounds = bounds
	a.mu.Unlock()

	a.debounced(a.saveBounds)
}

func (a *App) saveBounds() {
	a.mu.Lock()
	bounds := a.bounds
	a.mu.Unlock()

	if a.Geometry == nil || !bounds.Valid() {
		return
	}
	if err := a.Geometry.Save(bounds); err != nil {
		a.logger.Warn("save window bounds", "error", err)
	}
}

// restoreBounds moves the window to its last saved rectangle.
func (a *App) restoreBounds(ctx context.Context) {
	if a.Geometry == nil {
		return
	}
	bounds, ok, err := a.Geometry.Load()
	if err != nil {
		a.logger.Warn("load window bounds", "error", err)
		return
	}
	if !ok {
		return
	}

	a.mu.Lock()
	a.bounds = bounds
	a.mu.Unlock()

	wailsruntime.WindowSetSize(ctx, bounds.Width, bounds.Height)
	wailsruntime.WindowSetPosition(ctx, bounds.X, bounds.Y)
}

// beforeClose captures the final window rectangle; it never prevents closing.
func (a *App) beforeClose(ctx context.Context) bool {
	x, y := wailsruntime.WindowGetPosition(ctx)
	width, height := wailsruntime.WindowGetSize(ctx)
	a.mu.Lock()
	a.bounds = domain.Bounds{X: x, Y: y, Width: width, Height: height}
	a.mu.Unlock()

	a.saveBounds()
	return false
}
