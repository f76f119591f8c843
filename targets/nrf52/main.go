//go:build nrf52 || nrf52833 || nrf52840

// Firmware for the SPIM bring-up monitor. Requests arrive on machine.Serial
// (UART on nRF52832, USB CDC on boards that have it) and are executed
// against SPIM0..SPIM2.
package main

import (
	"machine"
	"strconv"
	"time"

	"nrfspim/monitor"
	"nrfspim/protocol"
	"nrfspim/spim"
)

const serialBaud = 115200

var (
	decoder *protocol.Decoder
	mon     *monitor.Monitor
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: serialBaud})
	InitDebug()

	decoder = protocol.NewDecoder()
	mon = monitor.New(spim.Instances...)
	mon.SetDebugWriter(DebugPrintln)
	DebugPrintln("spim monitor: " + strconv.Itoa(len(spim.Instances)) + " instances")

	var in [protocol.FrameMax]byte
	dropped := 0
	for {
		n := 0
		for n < len(in) && machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			in[n] = b
			n++
		}
		if n == 0 {
			// Yield to avoid a busy loop
			time.Sleep(100 * time.Microsecond)
			continue
		}

		decoder.Write(in[:n])
		if err := mon.Process(decoder, machine.Serial); err != nil {
			DebugPrintln("spim monitor: write after " + strconv.FormatUint(uint64(mon.Handled), 10) + " frames: " + err.Error())
		}

		if decoder.Dropped != dropped {
			DebugPrintln("spim monitor: dropped " + strconv.Itoa(decoder.Dropped-dropped) + " bad frames")
			dropped = decoder.Dropped
		}
	}
}
