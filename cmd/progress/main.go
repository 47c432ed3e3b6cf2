// Command progress inspects and edits the device-local topic progress store.
package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/delordemm1/go-sprints-api/internal/progress"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "progress",
		Short:         "Manage local topic progress",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "progress.db", "path to the progress database")

	rootCmd.AddCommand(
		setCmd(),
		getCmd(),
		listCmd(),
		clearCmd(),
		statsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func withStore(fn func(*progress.Store) error) error {
	db, err := progress.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(progress.New(db))
}

func setCmd() *cobra.Command {
	var (
		incomplete bool
		seconds    int
	)
	cmd := &cobra.Command{
		Use:   "set <topic-id>",
		Short: "Mark a topic completed (or not)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *progress.Store) error {
				return s.SetTopicProgress(args[0], !incomplete, seconds)
			})
		},
	}
	cmd.Flags().BoolVar(&incomplete, "incomplete", false, "record the topic as not completed")
	cmd.Flags().IntVarP(&seconds, "time", "t", 0, "seconds spent (0 keeps the stored value)")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <topic-id>",
		Short: "Show one topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *progress.Store) error {
				e, ok := s.TopicProgress(args[0])
				if !ok {
					return fmt.Errorf("no progress recorded for %q", args[0])
				}
				printEntries(cmd, map[string]progress.Entry{args[0]: e})
				return nil
			})
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recorded topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *progress.Store) error {
				printEntries(cmd, s.Progress())
				return nil
			})
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *progress.Store) error {
				return s.ClearProgress()
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completed topics and total time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *progress.Store) error {
				total := time.Duration(s.TotalTimeSpent()) * time.Second
				fmt.Fprintf(cmd.OutOrStdout(), "completed: %d\ntime spent: %s\n", s.CompletedTopicsCount(), total)
				return nil
			})
		},
	}
}

func printEntries(cmd *cobra.Command, entries map[string]progress.Entry) {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tCOMPLETED\tCOMPLETED AT\tSECONDS")
	for _, id := range ids {
		e := entries[id]
		at := "-"
		if e.CompletedAt != nil {
			at = e.CompletedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%d\n", id, e.Completed, at, e.TimeSpent)
	}
	_ = w.Flush()
}
