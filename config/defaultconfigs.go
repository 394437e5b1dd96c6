package config

import (
	"indicator-go/color"
	"indicator-go/gesture"
)

var embeddedConfigs = map[string]Config{
	// Pico with a common-anode RGB LED on PWM and the on-board LED as status.
	"pico-indicator": {
		Device:    "pico-indicator",
		Gesture:   gesture.DefaultTimings,
		Color:     color.DefaultSettings,
		Store:     Store{PageSize: DefaultPageSize, PollTimeoutMs: 100},
		RefreshMs: DefaultRefreshMs,
	},
	// Same board driving a two-pixel WS2812 strip: pixel 0 colour, pixel 1 status.
	"pico-ws2812": {
		Device: "pico-ws2812",
		Gesture: gesture.Timings{
			Debounce:        50,
			DoubleClick:     250,
			LongPressDelay:  1000,
			LongPressRepeat: 30,
		},
		Color:     color.DefaultSettings,
		Store:     Store{PageSize: DefaultPageSize, PollTimeoutMs: 100},
		RefreshMs: DefaultRefreshMs,
	},
	// Host simulator; a slower refresh keeps the terminal quiet.
	"sim": {
		Device:    "sim",
		Gesture:   gesture.DefaultTimings,
		Color:     color.DefaultSettings,
		Store:     Store{PageSize: DefaultPageSize, PollTimeoutMs: 100},
		RefreshMs: 50,
	},
}
