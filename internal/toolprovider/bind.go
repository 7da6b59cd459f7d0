package toolprovider

import (
	"context"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/tools"
)

// Bind returns the registry turns are served with and whether the tool
// provider counts as connected. An empty spec registers the built-in tools
// in-process. Otherwise the remote tools are loaded; when that fails the
// registry is empty and the process keeps running. release closes the
// provider connection.
func Bind(ctx context.Context, spec, version string) (reg *tools.Registry, connected bool, release func() error) {
	noop := func() error { return nil }
	logger := internal.Logger(ctx)
	if spec == "" {
		reg = tools.Builtin()
		logger.Info("using built-in tools", "tools", reg.Len())
		return reg, true, noop
	}
	c, err := Connect(ctx, spec, version)
	if err != nil {
		logger.Warn("tool provider unavailable; continuing without tools", "url", spec, "err", err)
		return tools.NewRegistry(), false, noop
	}
	reg = tools.NewRegistry()
	n, err := c.Populate(ctx, reg)
	if err != nil {
		_ = c.Close()
		logger.Warn("failed to load tools; continuing without tools", "url", spec, "err", err)
		return tools.NewRegistry(), false, noop
	}
	logger.Info("tool provider connected", "url", spec, "tools", n)
	return reg, true, c.Close
}
