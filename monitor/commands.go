package monitor

import "strconv"

// Command identifies a monitor request. Every request payload starts with
// the command and, except for CmdIdentify, the instance index; the
// arguments listed below follow, all VLQ encoded.
type Command uint8

const (
	CmdIdentify         Command = iota // -> count, variant...
	CmdTrigger                         // task
	CmdEventClear                      // event
	CmdEventCheck                      // event -> set
	CmdShortsEnable                    // mask
	CmdShortsDisable                   // mask
	CmdInterruptEnable                 // mask
	CmdInterruptDisable                // mask
	CmdInterruptCheck                  // mask -> enabled
	CmdEnable                          //
	CmdDisable                         //
	CmdPins                            // sck, mosi, miso
	CmdFrequency                       // code
	CmdConfigure                       // mode, order
	CmdORC                             // orc
	CmdTxWrite                         // offset, bytes
	CmdTxBuffer                        // length
	CmdRxBuffer                        // length
	CmdRxRead                          // offset, count -> bytes
	CmdRegisters                       // -> Registers fields in order
	cmdCount
)

var commandNames = [cmdCount]string{
	CmdIdentify:         "identify",
	CmdTrigger:          "trigger",
	CmdEventClear:       "event_clear",
	CmdEventCheck:       "event_check",
	CmdShortsEnable:     "shorts_enable",
	CmdShortsDisable:    "shorts_disable",
	CmdInterruptEnable:  "int_enable",
	CmdInterruptDisable: "int_disable",
	CmdInterruptCheck:   "int_check",
	CmdEnable:           "enable",
	CmdDisable:          "disable",
	CmdPins:             "pins",
	CmdFrequency:        "frequency",
	CmdConfigure:        "configure",
	CmdORC:              "orc",
	CmdTxWrite:          "tx_write",
	CmdTxBuffer:         "tx_buffer",
	CmdRxBuffer:         "rx_buffer",
	CmdRxRead:           "rx_read",
	CmdRegisters:        "registers",
}

func (c Command) String() string {
	if c < cmdCount {
		return commandNames[c]
	}
	return "command(" + strconv.Itoa(int(c)) + ")"
}

// Status is the first field of every response.
type Status uint8

const (
	StatusOK Status = iota
	StatusUnknownCommand
	StatusBadArgument
	StatusBadInstance
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusBadArgument:
		return "bad argument"
	case StatusBadInstance:
		return "bad instance"
	case StatusUnsupported:
		return "unsupported by variant"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// ChunkMax is the most staging bytes a single CmdTxWrite or CmdRxRead
// carries; it keeps both frames within protocol.PayloadMax.
const ChunkMax = 48

// BufferSize is the size of each instance's TX and RX staging buffer.
const BufferSize = 255

// Registers is the register snapshot returned by CmdRegisters.
type Registers struct {
	Enable    uint32
	Frequency uint32
	Config    uint32
	ORC       uint32
	IntEnable uint32
	Shorts    uint32
	SCK       uint32
	MOSI      uint32
	MISO      uint32
	TxMaxCnt  uint32
	TxAmount  uint32
	RxMaxCnt  uint32
	RxAmount  uint32
	// Events has the INTEN bit of every event register that is set.
	Events uint32
}

// Fields returns pointers to the snapshot fields in wire order.
func (r *Registers) Fields() []*uint32 {
	return []*uint32{
		&r.Enable, &r.Frequency, &r.Config, &r.ORC, &r.IntEnable, &r.Shorts,
		&r.SCK, &r.MOSI, &r.MISO,
		&r.TxMaxCnt, &r.TxAmount, &r.RxMaxCnt, &r.RxAmount,
		&r.Events,
	}
}
