//go:build rp2040

package rp2

import (
	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// ConsoleUART configures UART0 for the text console. *uartx.UART has the
// Write and RecvSomeContext methods the console needs.
func ConsoleUART(bd Board) (*uartx.UART, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: bd.UARTBaud,
		TX:       bd.UARTTX,
		RX:       bd.UARTRX,
	}); err != nil {
		return nil, err
	}
	return u, nil
}
