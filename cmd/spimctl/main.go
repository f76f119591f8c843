// Command spimctl drives the SPIM bring-up monitor on an nRF52 board.
//
//	spimctl -d /dev/ttyACM0 identify
//	spimctl -d /dev/ttyACM0 -i 1 apply flash.yaml
//	spimctl -d /dev/ttyACM0 tx 9f000000 && spimctl rx 4 && spimctl trigger start
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"nrfspim/host/client"
	"nrfspim/host/profile"
	"nrfspim/host/serial"
)

var _ profile.Target = (*client.Client)(nil)

// dial opens the monitor link. Tests replace it.
var dial = func(cfg *serial.Config) (io.ReadWriteCloser, error) {
	return serial.Open(cfg)
}

type options struct {
	device   string
	baud     int
	timeout  time.Duration
	instance int
	verbose  bool

	logger *slog.Logger
}

// session is an open connection for one command.
type session struct {
	*client.Client
	ctx      context.Context
	instance int
}

func (o *options) connect(cmd *cobra.Command) (*session, func(), error) {
	cfg := serial.DefaultConfig(o.device)
	cfg.Baud = o.baud
	port, err := dial(cfg)
	if err != nil {
		return nil, nil, err
	}
	o.logger.Debug("connected", "device", o.device, "baud", o.baud)

	c := client.New(port, o.logger)
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	done := func() {
		cancel()
		if err := c.Close(); err != nil {
			o.logger.Debug("close", "err", err)
		}
	}
	return &session{Client: c, ctx: ctx, instance: o.instance}, done, nil
}

// run wraps a command body with connect and close.
func (o *options) run(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, done, err := o.connect(cmd)
		if err != nil {
			return err
		}
		defer done()
		return fn(cmd, s, args)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "spimctl",
		Short:         "Drive SPIM registers through the bring-up monitor",
		Long:          "spimctl talks to the bring-up monitor firmware over a serial link and performs one SPIM register access per command.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if o.verbose {
				level = slog.LevelDebug
			}
			o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.device, "device", "d", "/dev/ttyACM0", "serial device")
	flags.IntVarP(&o.baud, "baud", "b", serial.DefaultBaud, "baud rate (ignored by USB CDC)")
	flags.DurationVarP(&o.timeout, "timeout", "t", 2*time.Second, "time limit for the whole command")
	flags.IntVarP(&o.instance, "instance", "i", 0, "SPIM instance")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log protocol traffic")

	root.AddCommand(
		identifyCmd(o),
		triggerCmd(o),
		eventCmd(o),
		interruptCmd(o),
		shortsCmd(o),
		enableCmd(o),
		disableCmd(o),
		pinsCmd(o),
		freqCmd(o),
		configureCmd(o),
		orcCmd(o),
		txCmd(o),
		rxCmd(o),
		readCmd(o),
		regsCmd(o),
		applyCmd(o),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spimctl:", err)
		os.Exit(1)
	}
}
