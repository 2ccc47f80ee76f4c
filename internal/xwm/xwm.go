// Package xwm shows border images in an X11 window.
package xwm

import (
	"context"
	"log/slog"

	"github.com/jezek/xgb"
)

func ReceiveEvents(ctx context.Context, conn *xgb.Conn, eventC chan<- any) {
	defer close(eventC)
	slog := slog.With("func", "xwm.ReceiveEvents")

	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			slog.Debug("exit: no event or error")
			return
		}

		if err != nil {
			slog.Error("failed to read event", "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case eventC <- ev:
		}
	}
}
