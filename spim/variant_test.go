package spim

import "testing"

func TestVariantCapabilities(t *testing.T) {
	if Baseline.Supports(EventEnd) {
		t.Error("baseline must not support END")
	}
	if !NRF52.Supports(EventEnd) {
		t.Error("NRF52 must support END")
	}
	if Baseline.Supports(Event(0x108)) {
		t.Error("unknown event reported as supported")
	}

	if got := Baseline.Interrupts(); got != InterruptStopped|InterruptEndRx|InterruptEndTx|InterruptStarted {
		t.Errorf("baseline interrupts: got %v", got)
	}
	if got := NRF52.Interrupts(); got&InterruptEnd == 0 {
		t.Errorf("NRF52 interrupts missing END: %v", got)
	}
	if Baseline.Shorts() != 0 || NRF52.Shorts() != ShortEndStart {
		t.Error("shortcut masks are wrong")
	}
	if len(Baseline.Events()) != 4 || len(NRF52.Events()) != 5 {
		t.Error("event lists are wrong")
	}
}

func TestStrings(t *testing.T) {
	testCases := []struct {
		got    string
		expect string
	}{
		{TaskSuspend.String(), "SUSPEND"},
		{EventEndTx.String(), "ENDTX"},
		{(InterruptStopped | InterruptEnd).String(), "STOPPED|END"},
		{Interrupt(1 << 31).String(), "0x80000000"},
		{Freq8M.String(), "8M"},
		{Mode2.String(), "MODE_2"},
		{LSBFirst.String(), "LSB_FIRST"},
		{PinNotConnected.String(), "NC"},
		{Pin(31).String(), "31"},
		{NRF52.String(), "nrf52"},
	}
	for _, tc := range testCases {
		if tc.got != tc.expect {
			t.Errorf("expected %q, got %q", tc.expect, tc.got)
		}
	}
}
