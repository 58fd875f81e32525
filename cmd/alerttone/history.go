package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Mavwarf/alerttone/internal/eventlog"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		days     int
		clean    int
		clearAll bool
		count    int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded alert events",
		Long: `Show the alert event log. Logging is enabled with "log": true in the
config file.

  --days N    limit to the last N days (1 = today)
  --clean N   remove events older than N days
  --clear     delete all events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.Options.DBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, `No event log found. Enable logging with "log": true in config.`)
				return nil
			}
			store, err := eventlog.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			switch {
			case clearAll:
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Event log cleared.")
				return nil
			case cmd.Flags().Changed("clean"):
				if clean <= 0 {
					return fmt.Errorf("--clean must be a positive number of days")
				}
				n, err := store.Clean(clean)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s events older than %d days.\n", humanize.Comma(int64(n)), clean)
				return nil
			}

			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			entries, err := store.Entries(days)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Event log is empty.")
				return nil
			}
			if count > 0 && len(entries) > count {
				entries = entries[len(entries)-count:]
			}
			for _, e := range entries {
				fmt.Fprintln(out, e)
			}

			counts, err := store.Counts(days)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			renderCounts(out, counts)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "limit to the last N days (0 = all)")
	cmd.Flags().IntVar(&clean, "clean", 0, "remove events older than N days")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all events")
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of events to list (0 = all)")
	return cmd
}

// renderCounts writes a priority x kind table with a total row.
func renderCounts(w io.Writer, counts []eventlog.Count) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Priority != counts[j].Priority {
			return counts[i].Priority < counts[j].Priority
		}
		return counts[i].Kind < counts[j].Kind
	})

	const kindWidth = 18
	var b strings.Builder
	b.WriteString(padR("Priority", 10))
	b.WriteString(padR("Event", kindWidth))
	b.WriteString(padL("Count", 10))
	b.WriteByte('\n')

	total := 0
	for _, c := range counts {
		b.WriteString(padR(c.Priority, 10))
		b.WriteString(padR(c.Kind.String(), kindWidth))
		b.WriteString(padL(humanize.Comma(int64(c.N)), 10))
		b.WriteByte('\n')
		total += c.N
	}
	b.WriteString(padR("Total", 10+kindWidth))
	b.WriteString(padL(humanize.Comma(int64(total)), 10))
	b.WriteByte('\n')
	io.WriteString(w, b.String())
}

// padL pads s to width with spaces on the left.
func padL(s string, width int) string {
	if pad := width - len(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

// padR pads s to width with spaces on the right.
func padR(s string, width int) string {
	if pad := width - len(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
