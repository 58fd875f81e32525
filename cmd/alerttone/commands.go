package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Mavwarf/alerttone/internal/alert"
	"github.com/Mavwarf/alerttone/internal/mute"
	"github.com/Mavwarf/alerttone/internal/paths"
	"github.com/Mavwarf/alerttone/internal/pcm"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <high|medium> <out.wav>",
		Short: "Write a priority tone to a WAV file",
		Long: `Synthesize the tone of a priority and write it as a 32-bit float WAV
file. No audio device is opened.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := alert.ParsePriority(args[0])
			prof, ok := alert.ProfileFor(p)
			if !ok {
				return fmt.Errorf("%q has no synthesized tone (want high or medium)", args[0])
			}
			buf, err := prof.Spec.Synthesize(prof.Format)
			if err != nil {
				return err
			}
			data, err := pcm.EncodeWAV(buf)
			if err != nil {
				return err
			}
			if err := paths.AtomicWrite(args[1], data); err != nil {
				return fmt.Errorf("writing %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s, %s)\n",
				args[1], buf.Format, buf.Duration(), humanize.Bytes(uint64(len(data))))
			return nil
		},
	}
}

func newMuteCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "mute [duration]",
		Short: "Silence alerts for a while",
		Long: `Silence alerts for the given duration (e.g. 10m, 1h30m). Running alerts
keep their timers but skip playback until the mute expires.

Without a duration, shows the current mute state.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := mute.Default()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if until, ok := m.Until(); ok {
					fmt.Fprintf(out, "Alerts muted until %s (%s)\n", until.Format("15:04:05"), humanize.Time(until))
				} else {
					fmt.Fprintln(out, "Alerts are not muted.")
				}
				return nil
			}
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}
			until, err := m.Set(d, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Alerts muted until %s (%s)\n", until.Format("15:04:05"), humanize.Time(until))
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "note stored with the mute")
	return cmd
}

func newUnmuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unmute",
		Short: "Lift an active mute",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mute.Default().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Alerts unmuted.")
			return nil
		},
	}
}
