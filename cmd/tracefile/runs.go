package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tracefile/internal/config"
	"tracefile/internal/storage"
	"tracefile/internal/storage/sqlite"
)

func newRunsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List runs archived in the case database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadOptions(v); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			store, err := openArchive(v)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tROOT\tFILES\tUNREADABLE\tFILTERS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					run.ID,
					humanize.Time(run.StartedAt),
					run.Root,
					humanize.Comma(int64(run.Records)),
					humanize.Comma(int64(run.Failures)),
					describeFilters(run),
				)
			}
			return w.Flush()
		},
	}
}

// openArchive opens the existing case database named by the db key.
func openArchive(v *viper.Viper) (*sqlite.Store, error) {
	path := v.GetString("db")
	if path == "" {
		return nil, errors.New("--db is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("case database %s: %w", path, err)
	}
	return sqlite.Open(path)
}

func describeFilters(run storage.Run) string {
	var parts []string
	if !run.StartDate.IsZero() {
		parts = append(parts, "from "+run.StartDate.Format("2006-01-02"))
	}
	if !run.EndDate.IsZero() {
		parts = append(parts, "to "+run.EndDate.Format("2006-01-02"))
	}
	if len(run.FileTypes) > 0 {
		parts = append(parts, "types "+strings.Join(run.FileTypes, ","))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
