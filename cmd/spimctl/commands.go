package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nrfspim/host/profile"
	"nrfspim/monitor"
	"nrfspim/spim"
)

func identifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "List the SPIM instances the monitor serves",
		Args:  cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			variants, err := s.Identify(s.ctx)
			if err != nil {
				return err
			}
			for i, v := range variants {
				fmt.Fprintf(cmd.OutOrStdout(), "SPIM%d: %v\n", i, v)
			}
			return nil
		}),
	}
}

func triggerCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <start|stop|suspend|resume>",
		Short: "Trigger a task",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			task, err := profile.ParseTask(args[0])
			if err != nil {
				return err
			}
			return s.Trigger(s.ctx, s.instance, task)
		}),
	}
}

func eventCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Clear or check an event register",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear <event>",
			Short: "Clear an event",
			Args:  cobra.ExactArgs(1),
			RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
				ev, err := profile.ParseEvent(args[0])
				if err != nil {
					return err
				}
				return s.ClearEvent(s.ctx, s.instance, ev)
			}),
		},
		&cobra.Command{
			Use:   "check <event>",
			Short: "Print whether an event is set",
			Args:  cobra.ExactArgs(1),
			RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
				ev, err := profile.ParseEvent(args[0])
				if err != nil {
					return err
				}
				set, err := s.EventSet(s.ctx, s.instance, ev)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%v: %s\n", ev, onOff(set, "set", "clear"))
				return nil
			}),
		},
	)
	return cmd
}

func interruptCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "int",
		Aliases: []string{"interrupt"},
		Short:   "Enable, disable or check interrupts",
	}
	parse := func(args []string) (spim.Interrupt, error) {
		return profile.ParseInterrupts(strings.Join(args, ","))
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable <event>...",
			Short: "Enable the interrupts of the named events",
			Args:  cobra.MinimumNArgs(1),
			RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
				mask, err := parse(args)
				if err != nil {
					return err
				}
				return s.EnableInterrupts(s.ctx, s.instance, mask)
			}),
		},
		&cobra.Command{
			Use:   "disable <event>...",
			Short: "Disable the interrupts of the named events",
			Args:  cobra.MinimumNArgs(1),
			RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
				mask, err := parse(args)
				if err != nil {
					return err
				}
				return s.DisableInterrupts(s.ctx, s.instance, mask)
			}),
		},
		&cobra.Command{
			Use:   "check <event>...",
			Short: "Print whether any of the interrupts is enabled",
			Args:  cobra.MinimumNArgs(1),
			RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
				mask, err := parse(args)
				if err != nil {
					return err
				}
				on, err := s.InterruptEnabled(s.ctx, s.instance, mask)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%v: %s\n", mask, onOff(on, "enabled", "disabled"))
				return nil
			}),
		},
	)
	return cmd
}

func shortsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorts",
		Short: "Enable or disable shortcuts",
	}
	for _, enable := range []bool{true, false} {
		enable := enable
		use, short := "disable", "Disable shortcuts"
		if enable {
			use, short = "enable", "Enable shortcuts"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   use + " <shortcut>...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
				mask, err := profile.ParseShorts(strings.Join(args, ","))
				if err != nil {
					return err
				}
				if enable {
					return s.EnableShorts(s.ctx, s.instance, mask)
				}
				return s.DisableShorts(s.ctx, s.instance, mask)
			}),
		})
	}
	return cmd
}

func enableCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Enable the peripheral",
		Args:  cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			return s.Enable(s.ctx, s.instance)
		}),
	}
}

func disableCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable the peripheral",
		Args:  cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			return s.Disable(s.ctx, s.instance)
		}),
	}
}

func pinsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pins <sck> <mosi> <miso>",
		Short: "Select pins; use nc for a disconnected pin",
		Args:  cobra.ExactArgs(3),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			var pins [3]spim.Pin
			for i, a := range args {
				p, err := profile.ParsePin(a)
				if err != nil {
					return err
				}
				pins[i] = p
			}
			return s.SetPins(s.ctx, s.instance, pins[0], pins[1], pins[2])
		}),
	}
}

func freqCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "freq <rate>",
		Short: "Set the bit rate (125k to 8M)",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			f, err := profile.ParseFrequency(args[0])
			if err != nil {
				return err
			}
			return s.SetFrequency(s.ctx, s.instance, f)
		}),
	}
}

func configureCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "configure <mode> [msb|lsb]",
		Short: "Set SPI mode and bit order",
		Args:  cobra.RangeArgs(1, 2),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			mode, err := profile.ParseMode(args[0])
			if err != nil {
				return err
			}
			order := spim.MSBFirst
			if len(args) == 2 {
				if order, err = profile.ParseBitOrder(args[1]); err != nil {
					return err
				}
			}
			return s.Configure(s.ctx, s.instance, mode, order)
		}),
	}
}

func orcCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "orc <byte>",
		Short: "Set the over-read character",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			v, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil {
				return fmt.Errorf("bad orc %q", args[0])
			}
			return s.SetORC(s.ctx, s.instance, byte(v))
		}),
	}
}

func txCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <hex>",
		Short: "Stage bytes and point TXD at them",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			data, err := hex.DecodeString(strings.ReplaceAll(args[0], ":", ""))
			if err != nil {
				return fmt.Errorf("bad hex data: %w", err)
			}
			if err := s.WriteTx(s.ctx, s.instance, 0, data); err != nil {
				return err
			}
			return s.SetTxBuffer(s.ctx, s.instance, len(data))
		}),
	}
}

func rxCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rx <length>",
		Short: "Point RXD at the receive buffer",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 || n > monitor.BufferSize {
				return fmt.Errorf("bad length %q", args[0])
			}
			return s.SetRxBuffer(s.ctx, s.instance, n)
		}),
	}
}

func readCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "read [length]",
		Short: "Print received bytes; defaults to RXD.AMOUNT",
		Args:  cobra.MaximumNArgs(1),
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			var n int
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("bad length %q", args[0])
				}
				n = v
			} else {
				r, err := s.Registers(s.ctx, s.instance)
				if err != nil {
					return err
				}
				n = int(r.RxAmount)
			}
			data, err := s.ReadRx(s.ctx, s.instance, 0, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
			return nil
		}),
	}
}

func regsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "regs",
		Short: "Dump the register state",
		Args:  cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, s *session, args []string) error {
			r, err := s.Registers(s.ctx, s.instance)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ENABLE\t0x%X\t%s\n", r.Enable, onOff(r.Enable == spim.ENABLE_Enabled, "enabled", "disabled"))
			fmt.Fprintf(w, "FREQUENCY\t0x%08X\t%v\n", r.Frequency, spim.Frequency(r.Frequency))
			fmt.Fprintf(w, "CONFIG\t0x%X\t\n", r.Config)
			fmt.Fprintf(w, "ORC\t0x%02X\t\n", r.ORC)
			fmt.Fprintf(w, "INTEN\t0x%08X\t%v\n", r.IntEnable, spim.Interrupt(r.IntEnable))
			fmt.Fprintf(w, "SHORTS\t0x%08X\t%v\n", r.Shorts, spim.Short(r.Shorts))
			fmt.Fprintf(w, "PSEL\t\tSCK=%v MOSI=%v MISO=%v\n", spim.Pin(r.SCK), spim.Pin(r.MOSI), spim.Pin(r.MISO))
			fmt.Fprintf(w, "TXD\t\tMAXCNT=%d AMOUNT=%d\n", r.TxMaxCnt, r.TxAmount)
			fmt.Fprintf(w, "RXD\t\tMAXCNT=%d AMOUNT=%d\n", r.RxMaxCnt, r.RxAmount)
			fmt.Fprintf(w, "EVENTS\t\t%v\n", spim.Interrupt(r.Events))
			return w.Flush()
		}),
	}
}

func applyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <profile.yaml>",
		Short: "Configure an instance from a YAML profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profile.LoadFile(args[0])
			if err != nil {
				return err
			}
			settings, err := p.Settings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("instance") {
				settings.Instance = o.instance
			}
			return o.run(func(cmd *cobra.Command, s *session, args []string) error {
				if err := settings.Apply(s.ctx, s); err != nil {
					return err
				}
				o.logger.Info("applied profile", "name", p.Name, "instance", settings.Instance)
				return nil
			})(cmd, args)
		},
	}
}

func onOff(b bool, on, off string) string {
	if b {
		return on
	}
	return off
}
