// Package logging sets up the structured logger shared across the engine,
// generalizing the teacher's plain *log.Logger field (distri's batch.Ctx.Log)
// into a *slog.Logger with a colorized handler on a terminal.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// New builds a logger writing to w. When w is a terminal, output is
// colorized with tint; otherwise a plain JSON handler is used so logs remain
// greppable when redirected to a file. BRITNEY_DEBUG=1 (§6) raises the level
// to Debug regardless of destination.
func New(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("BRITNEY_DEBUG") == "1" {
		level = slog.LevelDebug
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Default returns the standard stderr logger used by the CLI entry points.
func Default() *slog.Logger {
	return New(os.Stderr)
}
