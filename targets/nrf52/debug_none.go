//go:build nrf52 && !nrf52833 && !nrf52840

package main

// The nRF52832 has a single UART and the monitor link uses it, so debug
// output is discarded.

func InitDebug() {}

func DebugPrintln(string) {}
