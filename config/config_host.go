//go:build !(rp2040 || rp2350)

package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v2"

	"indicator-go/errcode"
)

// Parse decodes YAML over the embedded configuration of the device it
// names (DefaultDevice when absent) and validates the result.
func Parse(raw []byte) (Config, error) {
	var probe struct {
		Device string `yaml:"device"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return Config{}, &errcode.E{C: errcode.InvalidPayload, Op: "config.Parse", Err: err}
	}
	base := Default()
	if probe.Device != "" {
		if c, ok := Lookup(probe.Device); ok {
			base = c
		} else {
			base.Device = probe.Device
		}
	}
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return Config{}, &errcode.E{C: errcode.InvalidPayload, Op: "config.Parse", Err: err}
	}
	if err := base.Validate(); err != nil {
		return Config{}, err
	}
	return base, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &errcode.E{C: errcode.NotFound, Op: "config.Load", Err: err}
	}
	return Parse(raw)
}

// Watch emits a parsed Config whenever path is written or re-created.
// Files that fail to parse are logged and skipped. The channel closes when
// ctx ends.
func Watch(ctx context.Context, path string, log *slog.Logger) (<-chan Config, error) {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan Config)
	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				c, err := Load(path)
				if err != nil {
					log.Warn("config reload failed", "path", path, "err", err)
					continue
				}
				log.Info("config reloaded", "path", path, "device", c.Device)
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "err", err)
			}
		}
	}()
	return out, nil
}
