//go:build !(rp2040 || rp2350)

// Command indicator-sim runs the indicator firmware on the host: a terminal
// swatch stands in for the LED, the keyboard for the button, and a file for
// the flash page.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dikkadev/prettyslog"
	"github.com/urfave/cli"
	"github.com/zoobzio/capitan"

	"indicator-go/config"
	"indicator-go/errcode"
	"indicator-go/internal/telemetry"
	"indicator-go/platform/hostserial"
)

func main() {
	app := cli.NewApp()
	app.Name = "indicator-sim"
	app.Usage = "Run the RGB indicator against a simulated button, LED and flash page"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML config file, reloaded when it changes",
		},
		cli.StringFlag{
			Name:  "device",
			Usage: "embedded device defaults to start from",
			Value: config.DefaultDevice,
		},
		cli.StringFlag{
			Name:  "flash",
			Usage: "file backing the flash page",
			Value: "indicator-flash.bin",
		},
		cli.StringFlag{
			Name:  "serial",
			Usage: "serial port to run the text console on",
		},
		cli.IntFlag{
			Name:  "baud",
			Usage: "console serial baud rate",
			Value: 115200,
		},
		cli.StringFlag{
			Name:  "log",
			Usage: "log file for interactive mode",
			Value: "indicator-sim.log",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
		cli.StringFlag{
			Name:  "headless-script",
			Usage: "run a button script without a screen, e.g. \"click click wait=600 hold=1500 'cmd=RGB 0 0 255'\"",
		},
	}

	app.Action = runSim

	if err := app.Run(os.Args); err != nil {
		slog.Error("indicator-sim failed", "error", err)
		os.Exit(1)
	}
}

func runSim(c *cli.Context) error {
	script := c.String("headless-script")

	var logOut io.Writer = os.Stderr
	if script == "" {
		f, err := os.OpenFile(c.String("log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	log := slog.New(prettyslog.NewPrettyslogHandler("sim",
		prettyslog.WithLevel(level),
		prettyslog.WithWriter(logOut),
	))
	slog.SetDefault(log)

	cfg, err := loadConfig(c.String("config"), c.String("device"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSim(cfg, c.String("flash"), log)
	if err != nil {
		return err
	}

	var updates <-chan config.Config
	if path := c.String("config"); path != "" {
		if updates, err = config.Watch(ctx, path, log); err != nil {
			log.Warn("config watch disabled", "err", err)
		}
	}

	telemetry.LogHooks(log)
	defer capitan.Shutdown()

	if name := c.String("serial"); name != "" {
		port, err := hostserial.Open(name, c.Int("baud"))
		if err != nil {
			return err
		}
		defer port.Close()
		s.attachConsole(port)
		log.Info("console attached", "port", port.Name())
	}

	if err := s.start(ctx, updates); err != nil {
		return err
	}
	defer s.stop()

	if script != "" {
		steps, err := parseScript(script)
		if err != nil {
			return err
		}
		if err := runScript(ctx, s, steps, sleepCtx, os.Stdout); err != nil {
			return err
		}
		return s.report(ctx, os.Stdout)
	}
	return runScreen(ctx, s)
}

// loadConfig reads path when given, otherwise the embedded defaults of device.
func loadConfig(path, device string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, ok := config.Lookup(device)
	if !ok {
		return config.Config{}, &errcode.E{C: errcode.NotFound, Op: "indicator-sim", Msg: "unknown device " + device}
	}
	return cfg, nil
}
