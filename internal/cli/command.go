package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/folderreport/internal/config"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
	fs      afero.Fs
	stdout  io.Writer
	stderr  io.Writer
	// interactive enables the progress line and coloured banners.
	interactive bool
	// mailer overrides the SMTP dispatcher.
	mailer dispatcher
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{
		version:     version,
		fs:          afero.NewOsFs(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// Execute runs the CLI with the process arguments.
// Errors are printed with their cause chain before being returned.
func (c CLI) Execute() error {
	return c.run(os.Args[1:])
}

func (c CLI) run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := c.rootCommand()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		printError(c.stderr, err)

		return err
	}

	return nil
}

// rootCommand builds the command tree.
func (c CLI) rootCommand() *cobra.Command {
	var configFile string

	v := config.New()

	root := &cobra.Command{
		Use:     "folderreport [flags] [path]",
		Short:   "Scan a folder, render a PDF report and email it",
		Version: c.version,
		Long: heredoc.Doc(`
			folderreport analyzes a directory tree and reports statistics by file
			type and file size.

			The statistics are rendered into a PDF report with charts and tables,
			written to the output directory as
			'folder_analysis_report - YYYY-MM-DD HH.MM.SS.pdf', and mailed to the
			recipient over an authenticated STARTTLS session.

			Every flag can also be set through a FOLDERREPORT_* environment
			variable (e.g. FOLDERREPORT_PASSWORD) or a YAML file passed with --config.
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load(cmd, v, configFile, args)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return c.logic(cmd.Context(), cfg)
		},
	}

	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	pflags := root.PersistentFlags()
	pflags.StringVarP(&configFile, "config", "c", "", "YAML config file")
	pflags.Bool("debug", false, "Enable debug output")

	flags := root.Flags()
	flags.StringP("output-dir", "o", config.DefaultOutputDir, "Directory the PDF report is written to")
	flags.StringP("recipient", "r", "", "Email address receiving the report")
	flags.String("sender", "", "Sender account, also used as From address")
	flags.String("password", "", "Sender account password (prefer FOLDERREPORT_PASSWORD)")
	flags.String("smtp-host", config.DefaultSMTPHost, "SMTP server host")
	flags.Int("smtp-port", config.DefaultSMTPPort, "SMTP submission port (STARTTLS)")
	flags.StringP("subject", "s", "", "Email subject (default \"Folder Analysis Report - <date>\")")
	flags.String("temp-dir", os.TempDir(), "Parent directory for transient chart images")
	flags.Bool("skip-email", false, "Write the report without sending it")
	flags.SortFlags = false

	root.AddCommand(c.scanCommand(v, &configFile), c.configCommand(v, &configFile))

	return root
}

// scanCommand prints the statistics without rendering or sending anything.
func (c CLI) scanCommand(v *viper.Viper, configFile *string) *cobra.Command {
	allowedOutputs := []string{"table", "json"}

	var output string

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Print folder statistics as a table or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(allowedOutputs, output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", output, allowedOutputs)
			}

			cfg, err := c.load(cmd, v, *configFile, args)
			if err != nil {
				return err
			}

			if cfg.Target == "" {
				cfg.Target = "."
			}

			snap, err := c.scan(cmd.Context(), cfg, c.newLogger(cfg))
			if err != nil {
				return err
			}

			if output == "json" {
				return PrintJSON(snap, c.stdout)
			}

			return PrintTable(snap, c.stdout)
		},
	}

	cmd.Flags().StringVarP(&output, "format", "f", "table", "Output format: json or table")

	return cmd
}

// configCommand prints the effective configuration.
func (c CLI) configCommand(v *viper.Viper, configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with the password redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load(cmd, v, *configFile, args)
			if err != nil {
				return err
			}

			out, err := cfg.YAML()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(c.stdout, out)

			return err
		},
	}
}

// load binds the command's flags and resolves the configuration.
// A positional path overrides the configured target.
func (c CLI) load(cmd *cobra.Command, v *viper.Viper, configFile string, args []string) (config.Config, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return config.Config{}, err
	}

	if len(args) > 0 {
		cfg.Target = args[0]
	}

	return cfg, nil
}
