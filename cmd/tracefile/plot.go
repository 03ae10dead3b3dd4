package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tracefile/internal/app"
	"tracefile/internal/config"
	"tracefile/internal/report"
	"tracefile/internal/timeline"
)

func newPlotCmd(v *viper.Viper) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "plot [REPORT.csv]",
		Short: "Chart a saved CSV report or an archived run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadOptions(v); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			tl, err := loadTimeline(cmd.Context(), v, args, runID)
			if err != nil {
				return err
			}

			cfg := config.Config{
				ServeAddr:  v.GetString("serve"),
				ChartWidth: v.GetInt("chart_width"),
			}
			shown, err := report.RenderTimeline(cmd.Context(), tl, app.DisplayFor(cfg, cmd.OutOrStdout()))
			if err != nil {
				return fmt.Errorf("display timeline: %w", err)
			}
			if !shown {
				log.Printf("no data to visualize, timeline is empty")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "archived run id to plot (requires --db)")
	return cmd
}

func loadTimeline(ctx context.Context, v *viper.Viper, args []string, runID string) (timeline.Timeline, error) {
	switch {
	case len(args) == 1 && runID != "":
		return nil, errors.New("pass either a CSV report or --run, not both")
	case len(args) == 1:
		return report.ReadCSV(args[0])
	case runID != "":
		store, err := openArchive(v)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Timeline(ctx, runID)
	default:
		return nil, errors.New("nothing to plot: pass a CSV report or --run")
	}
}
