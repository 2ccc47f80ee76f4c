package sutureext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	if err := SanitizeError(ctx, nil); err != nil {
		t.Errorf("nil error became %v", err)
	}

	plain := errors.New("plain")
	if err := SanitizeError(ctx, plain); err != plain {
		t.Errorf("plain error became %v", err)
	}

	err := SanitizeError(ctx, errors.Join(suture.ErrDoNotRestart, context.Canceled))
	if errors.Is(err, context.Canceled) {
		t.Errorf("%v still looks like a context error", err)
	}
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("%v lost ErrDoNotRestart", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := SanitizeError(canceled, plain); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled context: got %v", err)
	}
}

func TestServeTerminate(t *testing.T) {
	super := NewSimple("test")
	Add(super, NewServiceFunc("quit", func(ctx context.Context) error {
		return suture.ErrTerminateSupervisorTree
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Serve(ctx, super); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
	if ctx.Err() != nil {
		t.Error("tree did not stop on its own")
	}
}
