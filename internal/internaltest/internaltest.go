// Package internaltest has helpers shared by unit tests.
package internaltest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/mathtutor/internal"
)

// Log returns a debug level slog.Logger writing to tb.Log and a context
// carrying it.
func Log(tb testing.TB) (context.Context, *slog.Logger) {
	l := slog.New(slog.NewTextHandler(&testWriter{tb: tb}, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.SourceKey:
				if s, ok := a.Value.Any().(*slog.Source); ok {
					s.File = filepath.Base(s.File)
				}
			}
			return a
		},
	}))
	return internal.WithLogger(tb.Context(), l), l
}

type testWriter struct {
	tb testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}
