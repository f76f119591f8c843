//go:build nrf52833 || nrf52840

package main

import "machine"

var debugUART *machine.UART

// InitDebug sends debug output to UART0 on its default pins. machine.Serial
// is USB CDC on these chips, so UART0 is free.
func InitDebug() {
	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{BaudRate: 115200}); err != nil {
		return
	}
	debugUART = uart
	DebugPrintln("=== nRF52 SPIM monitor debug ===")
}

// DebugPrintln writes s and a line break to the debug UART.
func DebugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
