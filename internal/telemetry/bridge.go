//go:build !(rp2040 || rp2350)

package telemetry

import (
	"context"
	"log/slog"

	"github.com/zoobzio/capitan"

	"indicator-go/bus"
	"indicator-go/errcode"
	"indicator-go/types"
)

// Bridge forwards gesture, colour and store messages from the bus to
// capitan until ctx ends. Subscriptions are in place when it returns.
func Bridge(ctx context.Context, conn *bus.Connection) {
	gestures := conn.Subscribe(bus.T(types.TokGesture, bus.Single))
	states := conn.Subscribe(bus.T(types.TokColor, types.TokState))
	stores := conn.Subscribe(bus.T(types.TokStore, types.TokEvent))

	go func() {
		defer conn.Unsubscribe(gestures)
		defer conn.Unsubscribe(states)
		defer conn.Unsubscribe(stores)

		for {
			select {
			case <-ctx.Done():
				return
			case m := <-gestures.Channel():
				if ev, ok := m.Payload.(types.GestureEvent); ok {
					capitan.Emit(ctx, GestureDetected, KeyKind.Field(string(ev.Kind)))
				}
			case m := <-states.Channel():
				if st, ok := m.Payload.(types.ColorState); ok {
					capitan.Emit(ctx, ColorChanged,
						KeyMode.Field(st.Mode),
						KeyHue.Field(int(st.Hue)),
						KeySat.Field(int(st.Saturation)),
						KeyBri.Field(int(st.Brightness)),
					)
				}
			case m := <-stores.Channel():
				if ev, ok := m.Payload.(types.StoreEvent); ok {
					emitStore(ctx, ev)
				}
			}
		}
	}()
}

func emitStore(ctx context.Context, ev types.StoreEvent) {
	sig := StoreFailed
	switch {
	case ev.Op == types.StoreRestore:
		sig = StoreRestored
	case ev.Code == string(errcode.OK):
		sig = StoreFlushed
	}
	capitan.Emit(ctx, sig,
		KeyOp.Field(string(ev.Op)),
		KeyCode.Field(ev.Code),
		KeyCursor.Field(int(ev.Cursor)),
	)
}

// LogHooks logs every indicator signal through log.
func LogHooks(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	capitan.Hook(GestureDetected, func(_ context.Context, e *capitan.Event) {
		kind, _ := KeyKind.From(e)
		log.Debug("gesture", "kind", kind)
	})
	capitan.Hook(ColorChanged, func(_ context.Context, e *capitan.Event) {
		mode, _ := KeyMode.From(e)
		hue, _ := KeyHue.From(e)
		sat, _ := KeySat.From(e)
		bri, _ := KeyBri.From(e)
		log.Debug("colour", "mode", mode, "hue", hue, "sat", sat, "bri", bri)
	})
	capitan.Hook(StoreRestored, func(_ context.Context, e *capitan.Event) {
		code, _ := KeyCode.From(e)
		log.Info("store restore", "code", code)
	})
	capitan.Hook(StoreFlushed, func(_ context.Context, e *capitan.Event) {
		cur, _ := KeyCursor.From(e)
		log.Info("store flushed", "cursor", cur)
	})
	capitan.Hook(StoreFailed, func(_ context.Context, e *capitan.Event) {
		op, _ := KeyOp.From(e)
		code, _ := KeyCode.From(e)
		log.Error("store failed", "op", op, "code", code)
	})
}
