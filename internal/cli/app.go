// Package cli wires the dashboard into cobra commands: serve runs the API,
// forecast prints the current forecasts and export writes report files.
package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/config"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/export"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	cfg     config.Config
}

// NewCLIApp creates the command tree. Running the root command with no
// subcommand starts the server.
func NewCLIApp(version string) *CLIApp {
	app := &CLIApp{}

	rootCmd := &cobra.Command{
		Use:           "datathon",
		Short:         "Retail sales dashboard and forecasting service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config-file")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			app.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, app.cfg)
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "Datathon dashboard version: %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")

	rootCmd.AddCommand(app.newServeCommand(), app.newForecastCommand(), app.newExportCommand())

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

func (app *CLIApp) newForecastCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Run every forecast once and print the results",
		RunE:  app.runForecast,
	}
	cmd.Flags().Bool("summary", true, "Print the recent monthly revenue summary")
	return cmd
}

func (app *CLIApp) newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run every forecast once and write report files",
		RunE:  app.runExport,
	}
	cmd.Flags().StringP("report-name", "n", "forecast", "Base name for the report files (without extension)")
	cmd.Flags().StringSliceP("report-type", "y", []string{export.FormatCSV}, "Report types: csv, json, pdf")
	cmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: export_dir from config)")
	return cmd
}

// snapshot loads the dataset and takes one persisted snapshot
func (app *CLIApp) snapshot(cmd *cobra.Command) (*deps, service.Snapshot, error) {
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := newStatus("Loading dataset...")
	d, err := bootstrap(ctx, app.cfg)
	if err != nil {
		status.Fail(err.Error())
		return nil, service.Snapshot{}, err
	}

	status.Update(fmt.Sprintf("Forecasting from %d orders...", d.data.Len()))
	snap, err := d.forecastSvc.TakeSnapshot(ctx, service.TriggerCLI)
	if err != nil {
		status.Fail(err.Error())
		d.Close()
		return nil, service.Snapshot{}, err
	}
	status.Success("Forecasts ready")
	return d, snap, nil
}

func (app *CLIApp) runForecast(cmd *cobra.Command, args []string) error {
	d, snap, err := app.snapshot(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	printSnapshot(out, snap)

	if withSummary, _ := cmd.Flags().GetBool("summary"); withSummary {
		sum, err := d.analyticsSvc.MonthlySummary(commandContext(cmd))
		if err != nil {
			return err
		}
		printSummary(out, sum)
	}
	return nil
}

func (app *CLIApp) runExport(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("report-name")
	types, _ := cmd.Flags().GetStringSlice("report-type")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = app.cfg.ExportDir
	}

	d, snap, err := app.snapshot(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	paths, err := export.NewExporter(dir).Export(snap, name, types...)
	for _, p := range paths {
		pterm.Success.Printfln("Report saved: %s", p)
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
