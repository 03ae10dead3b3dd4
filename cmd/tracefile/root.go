package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tracefile/internal/app"
	"tracefile/internal/config"
	"tracefile/internal/report"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "tracefile TARGET_DIR OUTPUT_FILE [--file_types EXT [EXT ...]]",
		Short: "Generate a forensic timeline from file metadata",
		Long: "tracefile walks TARGET_DIR, records each file's created, modified and accessed\n" +
			"timestamps, writes them to OUTPUT_FILE as CSV and plots them on a shared time axis.\n\n" +
			"Extra values after the two paths extend --file_types, so\n" +
			"\"--file_types .txt .log\" selects both suffixes. Suffixes are taken literally.\n\n" +
			"A TARGET_DIR named plot or runs is read as a subcommand; write it as ./plot.",
		Args:          scanArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("file_types") {
				types, err := cmd.Flags().GetStringArray("file_types")
				if err != nil {
					return err
				}
				v.Set("file_types", append(types, args[2:]...))
			}

			cfg, err := config.Load(v, args[0], args[1])
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			var opts []app.Option
			if !cfg.NoChart {
				opts = append(opts, app.WithDisplay(app.DisplayFor(cfg, cmd.OutOrStdout())))
			}

			application, err := app.New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer application.Close()

			return application.Run(cmd.Context())
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.String("config", "", "TOML options file")
	persistent.String("db", "", "SQLite case database that archives each run")
	persistent.String("serve", "", "show the chart in a browser on this address instead of the terminal")
	persistent.Int("chart_width", report.DefaultTerminalWidth, "terminal chart width in columns")

	flags := cmd.Flags()
	flags.String("start_date", "", "only include files created at or after this date (YYYY-MM-DD)")
	flags.String("end_date", "", "only include files created at or before this date (YYYY-MM-DD)")
	flags.StringArray("file_types", nil, "file name suffixes to include, e.g. --file_types .txt .jpg")
	flags.String("test_data_dir", config.DefaultTestDataDir, "directory to seed with sample files if it does not exist")
	flags.Bool("no_chart", false, "skip the chart")

	mustBind(v, persistent, "config", "db", "serve", "chart_width")
	mustBind(v, flags, "start_date", "end_date", "file_types", "test_data_dir", "no_chart")

	cmd.AddCommand(newPlotCmd(v), newRunsCmd(v))
	return cmd
}

// scanArgs accepts TARGET_DIR and OUTPUT_FILE. Further positionals are only
// allowed as trailing --file_types values.
func scanArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(2)(cmd, args); err != nil {
		return err
	}
	if len(args) > 2 && !cmd.Flags().Changed("file_types") {
		return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
	}
	return nil
}

func mustBind(v *viper.Viper, flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
