// Command mathtutor-tools serves the arithmetic tools over MCP.
//
// By default the streamable HTTP transport is served at /mcp on
// tool_server.addr. With -stdio it speaks MCP over stdin/stdout instead,
// for use as a "stdio://mathtutor-tools -stdio" provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/internal/config"
	"github.com/petasbytes/mathtutor/internal/mathserver"
	"github.com/petasbytes/mathtutor/tools"
)

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	programLevel := &slog.LevelVar{}
	internal.InitLog(programLevel)

	configPath := flag.String("config", "", "Configuration file. If not present, it is automatically created. Empty uses the built-in defaults.")
	stdio := flag.Bool("stdio", false, "Serve over stdin/stdout")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()
	if len(flag.Args()) != 0 {
		return errors.New("unexpected argument")
	}
	if *verbose {
		programLevel.Set(slog.LevelDebug)
	}

	reg := tools.Builtin()
	server := mathserver.NewServer(reg, internal.Version())
	if *stdio {
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	cfg := &config.Config{}
	if err := cfg.LoadOrDefault(*configPath); err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/mcp", mathserver.Handler(server))
	srv := &http.Server{Addr: cfg.ToolServer.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	slog.Info("main", "addr", cfg.ToolServer.Addr, "path", "/mcp", "tools", reg.Len())
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
		fmt.Fprintf(os.Stderr, "mathtutor-tools: %v\n", err)
		os.Exit(1)
	}
}
