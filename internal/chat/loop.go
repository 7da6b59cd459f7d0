// Package chat is the interactive terminal front end.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/internal/runner"
	"github.com/petasbytes/mathtutor/memory"
)

// ExitCommand ends the session.
const ExitCommand = "exit"

// Loop reads one user message per line from In and prints each answer to
// Out. The conversation persists across turns.
type Loop struct {
	Runner       *runner.Runner
	Conversation *memory.Conversation
	In           io.Reader
	Out          io.Writer
}

// Run returns nil on EOF or the exit command, and ctx.Err() when canceled.
// Failed turns are reported on Out and the loop continues.
func (l *Loop) Run(ctx context.Context) error {
	// Reading happens in its own goroutine so cancellation is not held up by
	// a blocked read.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(l.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(l.Out, "Tú: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(l.Out)
			select {
			case err := <-readErr:
				return err
			default:
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, ExitCommand) {
			return nil
		}
		answer, err := l.Runner.RunTurn(ctx, l.Conversation, line)
		if err != nil {
			internal.Logger(ctx).Debug("turn failed", "err", err)
			fmt.Fprintf(l.Out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(l.Out, "Tutor: %s\n", answer)
	}
}
