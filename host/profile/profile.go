// Package profile loads SPIM bring-up profiles from YAML and applies them
// to a target through the monitor client.
//
// A profile names a complete peripheral setup:
//
//	name: flash
//	instance: 0
//	pins: {sck: P0.19, mosi: P0.20, miso: P0.21}
//	frequency: 8M
//	mode: MODE_0
//	bit_order: msb
//	orc: 0xFF
//	interrupts: [end]
//	shorts: []
//	enable: true
package profile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"nrfspim/spim"
)

// Profile is the YAML form of a bring-up profile. Values are kept as text
// and resolved by Settings.
type Profile struct {
	Name       string   `yaml:"name"`
	Instance   int      `yaml:"instance"`
	Pins       Pins     `yaml:"pins"`
	Frequency  string   `yaml:"frequency"`
	Mode       string   `yaml:"mode"`
	BitOrder   string   `yaml:"bit_order"`
	ORC        *int     `yaml:"orc,omitempty"`
	Interrupts []string `yaml:"interrupts,omitempty"`
	Shorts     []string `yaml:"shorts,omitempty"`
	Enable     *bool    `yaml:"enable,omitempty"`
}

// Pins holds pin names as accepted by ParsePin.
type Pins struct {
	SCK  string `yaml:"sck"`
	MOSI string `yaml:"mosi"`
	MISO string `yaml:"miso"`
}

// Settings is a resolved profile.
type Settings struct {
	Instance        int
	SCK, MOSI, MISO spim.Pin
	Frequency       spim.Frequency
	Mode            spim.Mode
	Order           spim.BitOrder
	ORC             byte
	Interrupts      spim.Interrupt
	Shorts          spim.Short
	Enable          bool
}

// Target is what a profile is applied to. *client.Client implements it.
type Target interface {
	Disable(ctx context.Context, instance int) error
	SetPins(ctx context.Context, instance int, sck, mosi, miso spim.Pin) error
	SetFrequency(ctx context.Context, instance int, f spim.Frequency) error
	Configure(ctx context.Context, instance int, mode spim.Mode, order spim.BitOrder) error
	SetORC(ctx context.Context, instance int, orc byte) error
	EnableInterrupts(ctx context.Context, instance int, mask spim.Interrupt) error
	EnableShorts(ctx context.Context, instance int, mask spim.Short) error
	Enable(ctx context.Context, instance int) error
}

// Load parses a YAML profile, fills in defaults and checks that every
// value resolves.
func Load(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	applyDefaults(&p)
	if _, err := p.Settings(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads and loads the profile at path.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func applyDefaults(p *Profile) {
	if p.Pins.SCK == "" {
		p.Pins.SCK = "nc"
	}
	if p.Pins.MOSI == "" {
		p.Pins.MOSI = "nc"
	}
	if p.Pins.MISO == "" {
		p.Pins.MISO = "nc"
	}
	if p.Frequency == "" {
		p.Frequency = "4M"
	}
	if p.Mode == "" {
		p.Mode = "0"
	}
	if p.BitOrder == "" {
		p.BitOrder = "msb"
	}
	if p.Enable == nil {
		enable := true
		p.Enable = &enable
	}
}

// Settings resolves the profile.
func (p *Profile) Settings() (Settings, error) {
	s := Settings{Instance: p.Instance, Enable: p.Enable == nil || *p.Enable}
	var err error

	if p.Instance < 0 {
		return s, fmt.Errorf("profile %q: negative instance", p.Name)
	}
	for _, pin := range []struct {
		name string
		text string
		dst  *spim.Pin
	}{
		{"sck", p.Pins.SCK, &s.SCK},
		{"mosi", p.Pins.MOSI, &s.MOSI},
		{"miso", p.Pins.MISO, &s.MISO},
	} {
		if *pin.dst, err = ParsePin(pin.text); err != nil {
			return s, fmt.Errorf("profile %q: %s: %w", p.Name, pin.name, err)
		}
	}
	if s.Frequency, err = ParseFrequency(p.Frequency); err != nil {
		return s, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if s.Mode, err = ParseMode(p.Mode); err != nil {
		return s, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if s.Order, err = ParseBitOrder(p.BitOrder); err != nil {
		return s, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if p.ORC != nil {
		if *p.ORC < 0 || *p.ORC > 0xFF {
			return s, fmt.Errorf("profile %q: orc %d out of range", p.Name, *p.ORC)
		}
		s.ORC = byte(*p.ORC)
	}
	if s.Interrupts, err = ParseInterrupts(strings.Join(p.Interrupts, ",")); err != nil {
		return s, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if s.Shorts, err = ParseShorts(strings.Join(p.Shorts, ",")); err != nil {
		return s, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return s, nil
}

type step struct {
	name string
	run  func() error
}

// Apply configures the instance. The peripheral is disabled while its
// pins and configuration change and enabled last if requested.
func (s Settings) Apply(ctx context.Context, t Target) error {
	i := s.Instance
	steps := []step{
		{"disable", func() error { return t.Disable(ctx, i) }},
		{"pins", func() error { return t.SetPins(ctx, i, s.SCK, s.MOSI, s.MISO) }},
		{"frequency", func() error { return t.SetFrequency(ctx, i, s.Frequency) }},
		{"configure", func() error { return t.Configure(ctx, i, s.Mode, s.Order) }},
		{"orc", func() error { return t.SetORC(ctx, i, s.ORC) }},
	}
	if s.Interrupts != 0 {
		steps = append(steps, step{"interrupts", func() error { return t.EnableInterrupts(ctx, i, s.Interrupts) }})
	}
	if s.Shorts != 0 {
		steps = append(steps, step{"shorts", func() error { return t.EnableShorts(ctx, i, s.Shorts) }})
	}
	if s.Enable {
		steps = append(steps, step{"enable", func() error { return t.Enable(ctx, i) }})
	}

	for _, st := range steps {
		if err := st.run(); err != nil {
			return fmt.Errorf("apply %s: %w", st.name, err)
		}
	}
	return nil
}
