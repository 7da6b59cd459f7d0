// Command mathtutor is an interactive math tutor in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/internal/chat"
	"github.com/petasbytes/mathtutor/internal/config"
	"github.com/petasbytes/mathtutor/internal/gateway"
	"github.com/petasbytes/mathtutor/internal/runner"
	"github.com/petasbytes/mathtutor/internal/telemetry"
	"github.com/petasbytes/mathtutor/internal/toolprovider"
	"github.com/petasbytes/mathtutor/memory"
)

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	programLevel := &slog.LevelVar{}
	internal.InitLog(programLevel)

	configPath := flag.String("config", "", "Configuration file. If not present, it is automatically created. Empty uses the built-in defaults.")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	version := flag.Bool("version", false, "Print version then exit")
	flag.Parse()
	if len(flag.Args()) != 0 {
		return errors.New("unexpected argument")
	}
	if *version {
		fmt.Printf("mathtutor %s\n", internal.Version())
		return nil
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
	reg, _, release := toolprovider.Bind(ctx, cfg.ToolProvider.URL, internal.Version())
	defer release()

	slog.Debug("main", "mode", cfg.Mode, "model", cfg.Model, "prompt", cfg.Prompt.Version)
	fmt.Printf("Tutor de matemáticas (escribe '%s' para salir)\n", chat.ExitCommand)
	loop := &chat.Loop{
		Runner:       runner.New(gw, reg),
		Conversation: memory.NewConversation(cfg.Prompt.Render()),
		In:           os.Stdin,
		Out:          os.Stdout,
	}
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("¡Hasta luego!")
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "mathtutor: %v\n", err)
		os.Exit(1)
	}
}
