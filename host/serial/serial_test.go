package serial

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	if cfg.Device != "/dev/ttyACM0" || cfg.Baud != DefaultBaud {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.ReadTimeout != 100*time.Millisecond {
		t.Errorf("read timeout: %v", cfg.ReadTimeout)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("nil config accepted")
	}
	if _, err := Open(&Config{Baud: DefaultBaud}); err == nil {
		t.Error("empty device accepted")
	}
	if _, err := Open(DefaultConfig("/dev/nrfspim-no-such-device")); err == nil {
		t.Error("missing device opened")
	}
}
