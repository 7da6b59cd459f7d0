package chat_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/petasbytes/mathtutor/internal/chat"
	"github.com/petasbytes/mathtutor/internal/gateway"
	"github.com/petasbytes/mathtutor/internal/internaltest"
	"github.com/petasbytes/mathtutor/internal/runner"
	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

func TestLoop(t *testing.T) {
	ctx, _ := internaltest.Log(t)
	gw := gateway.NewScripted(
		gateway.Text("¡Hola!"),
		gateway.Call("t1", "evaluate_expression", `{"expression":"2*3+5"}`),
		gateway.Text("Son 11."),
	)
	conv := memory.NewConversation("tutor")
	var out bytes.Buffer
	l := &chat.Loop{
		Runner:       runner.New(gw, tools.Builtin()),
		Conversation: conv,
		In:           strings.NewReader("hola\n\n   \n2*3+5\nEXIT\nnever read\n"),
		Out:          &out,
	}
	if err := l.Run(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Tutor: ¡Hola!\n", "Tutor: Son 11.\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q lacks %q", got, want)
		}
	}
	if n := len(gw.Calls()); n != 3 {
		t.Fatalf("expected 3 gateway calls, got %d", n)
	}
	// system + (user, assistant) + (user, call, result, assistant)
	if conv.Len() != 7 {
		t.Fatalf("expected 7 messages, got %d", conv.Len())
	}
}

func TestLoop_ErrorKeepsGoing(t *testing.T) {
	ctx, _ := internaltest.Log(t)
	gw := gateway.NewScripted(
		gateway.Step{Err: &gateway.ModelUnavailableError{Err: errors.New("overloaded")}},
		gateway.Text("Ahora sí."),
	)
	conv := memory.NewConversation("tutor")
	var out bytes.Buffer
	l := &chat.Loop{Runner: runner.New(gw, tools.Builtin()), Conversation: conv, In: strings.NewReader("1+1\n1+1\n"), Out: &out}
	if err := l.Run(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "error: model unavailable: overloaded\n") || !strings.Contains(got, "Tutor: Ahora sí.\n") {
		t.Fatalf("unexpected output %q", got)
	}
	// The failed turn was rolled back; only the retry remains.
	if conv.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", conv.Len())
	}
}

func TestLoop_Canceled(t *testing.T) {
	ctx, _ := internaltest.Log(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()
	gw := gateway.NewScripted()
	l := &chat.Loop{Runner: runner.New(gw, tools.Builtin()), Conversation: memory.NewConversation(""), In: strings.NewReader("1+1\n"), Out: &bytes.Buffer{}}
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(gw.Calls()) != 0 {
		t.Fatal("gateway called after cancellation")
	}
}
