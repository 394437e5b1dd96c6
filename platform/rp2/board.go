//go:build rp2040

// Package rp2 binds the platform interfaces to RP2040 peripherals.
package rp2

import "machine"

// Board is the pin plan of one hardware variant.
type Board struct {
	Button          machine.Pin
	ButtonActiveLow bool

	// PWM variant: common-anode RGB LED plus a status LED.
	LEDR, LEDG, LEDB machine.Pin
	LEDStatus        machine.Pin
	PWMFreqHz        uint64

	// WS2812 variant: pixel 0 colour, pixel 1 status.
	Pixels machine.Pin

	UARTTX, UARTRX machine.Pin
	UARTBaud       uint32
}

// Boards keyed by config device name.
var Boards = map[string]Board{
	"pico-indicator": {
		Button:          machine.GP15,
		ButtonActiveLow: true,
		LEDR:            machine.GP16,
		LEDG:            machine.GP17,
		LEDB:            machine.GP18,
		LEDStatus:       machine.LED,
		PWMFreqHz:       1000,
		Pixels:          machine.NoPin,
		UARTTX:          machine.UART0_TX_PIN,
		UARTRX:          machine.UART0_RX_PIN,
		UARTBaud:        115200,
	},
	"pico-ws2812": {
		Button:          machine.GP15,
		ButtonActiveLow: true,
		LEDR:            machine.NoPin,
		LEDG:            machine.NoPin,
		LEDB:            machine.NoPin,
		LEDStatus:       machine.NoPin,
		Pixels:          machine.GP22,
		UARTTX:          machine.UART0_TX_PIN,
		UARTRX:          machine.UART0_RX_PIN,
		UARTBaud:        115200,
	},
}
