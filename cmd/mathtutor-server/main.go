// Command mathtutor-server serves the tutor over HTTP for the web front end.
//
// With -serve-tools it also hosts the MCP tool server in the same process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/internal/config"
	"github.com/petasbytes/mathtutor/internal/gateway"
	"github.com/petasbytes/mathtutor/internal/httpapi"
	"github.com/petasbytes/mathtutor/internal/mathserver"
	"github.com/petasbytes/mathtutor/internal/runner"
	"github.com/petasbytes/mathtutor/internal/telemetry"
	"github.com/petasbytes/mathtutor/internal/toolprovider"
	"github.com/petasbytes/mathtutor/tools"
)

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	programLevel := &slog.LevelVar{}
	internal.InitLog(programLevel)

	configPath := flag.String("config", "", "Configuration file. If not present, it is automatically created. Empty uses the built-in defaults.")
	serveTools := flag.Bool("serve-tools", false, "Also serve the MCP tool server on tool_server.addr")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()
	if len(flag.Args()) != 0 {
		return errors.New("unexpected argument")
	}
	if *verbose {
		programLevel.Set(slog.LevelDebug)
	}

	cfg := &config.Config{}
	if err := cfg.LoadOrDefault(*configPath); err != nil {
		return err
	}
	telemetry.Configure(telemetry.Config{Enabled: cfg.Telemetry.ObserveJSON, Dir: cfg.Telemetry.ArtifactsDir})
	gw, err := gateway.New(cfg)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	if *serveTools {
		// Listen before binding so the provider below can dial it.
		ln, err := net.Listen("tcp", cfg.ToolServer.Addr)
		if err != nil {
			return err
		}
		srv := &http.Server{Handler: toolsMux(), ReadHeaderTimeout: 10 * time.Second}
		eg.Go(func() error { return serve(ctx, srv, ln) })
	}

	reg, connected, release := toolprovider.Bind(ctx, cfg.ToolProvider.URL, internal.Version())
	defer release()
	s := httpapi.New(runner.New(gw, reg), reg, cfg.Prompt.Render(), connected, cfg.HTTP.AllowedOrigins)
	eg.Go(func() error { return s.Start(ctx, cfg.HTTP.Addr) })

	slog.Info("main", "mode", cfg.Mode, "http", cfg.HTTP.Addr, "tools", reg.Len(), "tool_provider_connected", connected)
	return eg.Wait()
}

func toolsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mathserver.Handler(mathserver.NewServer(tools.Builtin(), internal.Version())))
	return mux
}

// serve runs srv on ln until ctx is canceled.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "mathtutor-server: %v\n", err)
		os.Exit(1)
	}
}
