//go:build rp2040

// Command indicator-fw is the RP2040 firmware: one button, one RGB
// indicator, colour persisted to the last flash block.
package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"indicator-go/bus"
	"indicator-go/color"
	"indicator-go/config"
	"indicator-go/gesture"
	"indicator-go/nvstore"
	"indicator-go/platform"
	"indicator-go/platform/rp2"
	"indicator-go/platform/timerq"
	"indicator-go/services/console"
	"indicator-go/services/heartbeat"
	"indicator-go/services/indicator"
)

// device selects the embedded configuration; override with
// -ldflags="-X main.device=pico-ws2812".
var device = config.DefaultDevice

func halt(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	for {
		time.Sleep(time.Hour)
	}
}

func main() {
	// Allow USB CDC to enumerate before we log.
	time.Sleep(2 * time.Second)

	log := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg, ok := config.Lookup(device)
	if !ok {
		log.Warn("unknown device, using default", "device", device)
		cfg = config.Default()
	}
	bd, ok := rp2.Boards[cfg.Device]
	if !ok {
		halt(log, "no board pin plan", nil)
	}
	log.Info("boot", "device", cfg.Device)

	ctx := context.Background()
	b := bus.NewBus(8)

	var out platform.Output
	if bd.Pixels != machine.NoPin {
		out = rp2.NewPixelOutput(bd.Pixels, log)
	} else {
		pwm, err := rp2.NewPWMOutput(bd)
		if err != nil {
			halt(log, "pwm setup failed", err)
		}
		out = pwm
	}

	page, err := rp2.NewFlashPage()
	if err != nil {
		halt(log, "flash setup failed", err)
	}
	store := nvstore.New(page,
		nvstore.WithLogger(log),
		nvstore.WithPollTimeout(cfg.Store.PollTimeout()),
	)
	if err := store.Initialize(color.RecordSize); err != nil {
		halt(log, "store init failed", err)
	}

	svc := indicator.New(b.NewConnection("indicator"), store, out,
		indicator.WithLogger(log),
		indicator.WithRefresh(cfg.Refresh()),
		indicator.WithSettings(cfg.Color),
	)
	svc.Boot()

	timers := timerq.New(32)
	go timers.Run(ctx)

	btn := rp2.NewButton(bd.Button, bd.ButtonActiveLow)
	rec, err := gesture.New(btn, timers, svc.Handler(), gesture.WithTimings(cfg.Gesture))
	if err != nil {
		halt(log, "gesture setup failed", err)
	}
	svc.AttachTimings(rec)
	if err := btn.OnEdge(rec.OnEdge); err != nil {
		halt(log, "button irq failed", err)
	}

	config.NewService(log).Start(ctx, b.NewConnection("config"), cfg, nil)
	_ = heartbeat.New(out, heartbeat.WithLogger(log), heartbeat.WithPeriod(cfg.Refresh())).
		Start(ctx, b.NewConnection("heartbeat"))

	if uart, err := rp2.ConsoleUART(bd); err != nil {
		log.Warn("console disabled", "err", err)
	} else {
		go console.New(uart, b.NewConnection("console"), console.WithLogger(log)).Run(ctx)
	}

	_ = svc.Run(ctx)
}
