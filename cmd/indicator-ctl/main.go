//go:build !(rp2040 || rp2350)

// Command indicator-ctl talks to the indicator's text console over a serial
// port.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dikkadev/prettyslog"
	"github.com/urfave/cli"

	"indicator-go/errcode"
	"indicator-go/platform/hostserial"
)

func main() {
	app := cli.NewApp()
	app.Name = "indicator-ctl"
	app.Usage = "Send console commands to an RGB indicator"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if c.GlobalBool("debug") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(prettyslog.NewPrettyslogHandler("ctl", prettyslog.WithLevel(level))))
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "send",
			Usage:     "send one command line and print the response",
			ArgsUsage: "<command...>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "port, p", Usage: "serial port name"},
				cli.IntFlag{Name: "baud", Usage: "baud rate", Value: 115200},
				cli.DurationFlag{Name: "idle", Usage: "stop reading after this much silence", Value: 300 * time.Millisecond},
				cli.DurationFlag{Name: "timeout", Usage: "overall deadline", Value: 3 * time.Second},
			},
			Action: sendCmd,
		},
		{
			Name:   "ports",
			Usage:  "list serial ports",
			Action: portsCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("indicator-ctl failed", "error", err)
		os.Exit(1)
	}
}

func sendCmd(c *cli.Context) error {
	line := strings.Join(c.Args(), " ")
	if strings.TrimSpace(line) == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "send", Msg: "no command given"}
	}
	name := c.String("port")
	if name == "" {
		ports, err := hostserial.List()
		if err != nil || len(ports) == 0 {
			return &errcode.E{C: errcode.NotFound, Op: "send", Msg: "no serial port found, use --port", Err: err}
		}
		name = ports[0]
		slog.Debug("using first serial port", "port", name)
	}

	port, err := hostserial.Open(name, c.Int("baud"))
	if err != nil {
		return err
	}
	defer port.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()
	resp, err := exchange(ctx, port, line, c.Duration("idle"))
	if err != nil {
		return err
	}
	fmt.Print(resp)
	return nil
}

type conn interface {
	io.Writer
	ReadUntilIdle(ctx context.Context, idle time.Duration) ([]byte, error)
}

// exchange writes line with a CR terminator and returns the console's
// response with the echoed command stripped.
func exchange(ctx context.Context, p conn, line string, idle time.Duration) (string, error) {
	if _, err := io.WriteString(p, line+"\r"); err != nil {
		return "", errcode.Wrap(errcode.WriteFailed, "send", err)
	}
	raw, err := p.ReadUntilIdle(ctx, idle)
	if err != nil && len(raw) == 0 {
		return "", errcode.Wrap(errcode.Timeout, "send", err)
	}
	resp := strings.TrimPrefix(string(raw), line)
	return strings.TrimLeft(resp, "\r\n") + "\n", nil
}

func portsCmd(c *cli.Context) error {
	ports, err := hostserial.List()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
