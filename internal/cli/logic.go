package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/idelchi/folderreport/internal/config"
	"github.com/idelchi/folderreport/internal/dirstat"
	"github.com/idelchi/folderreport/internal/logger"
	"github.com/idelchi/folderreport/internal/mailer"
	"github.com/idelchi/folderreport/internal/report"
)

const bannerWidth = 60

// dispatcher delivers a rendered report.
type dispatcher interface {
	Send(ctx context.Context, recipient, artifactPath, subject string) error
}

func (c CLI) newLogger(cfg config.Config) *zap.Logger {
	return logger.New(logger.Options{Debug: cfg.Debug, Output: c.stderr})
}

// banner prints a section banner, bold when the output is a terminal.
func (c CLI) banner(title string, leadingBlank bool) {
	style := color.New(color.Bold, color.FgCyan)
	if !c.interactive {
		style.DisableColor()
	}

	rule := strings.Repeat("=", bannerWidth)

	if leadingBlank {
		fmt.Fprintln(c.stdout)
	}

	fmt.Fprintln(c.stdout, rule)
	style.Fprintln(c.stdout, title)
	fmt.Fprintln(c.stdout, rule)
}

// scan runs the scanner, showing a progress line on interactive terminals.
func (c CLI) scan(ctx context.Context, cfg config.Config, log *zap.Logger) (*dirstat.Snapshot, error) {
	enableProgress := c.interactive && !cfg.Debug

	opts := dirstat.Options{}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(c.stderr, "\033[?25l")
		defer fmt.Fprint(c.stderr, "\033[?25h")

		opts.Progress = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(c.stderr, "\r\033[2K%s\r", msg)
		}
	}

	snap, err := dirstat.NewScanner(c.fs, log, opts).Scan(ctx, cfg.Target)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(c.stderr, "\r\033[2K\r")
	}

	if err != nil {
		return nil, err
	}

	fmt.Fprintf(c.stdout, "Found %d files (%s)\n", snap.FileCount, dirstat.FormatSize(snap.TotalBytes))

	if n := len(snap.Skipped); n > 0 {
		fmt.Fprintf(c.stdout, "Skipped %d unreadable files\n", n)
	}

	return snap, nil
}

// logic runs scan, render and delivery in order. Any stage error aborts the run.
func (c CLI) logic(ctx context.Context, cfg config.Config) error {
	log := c.newLogger(cfg)
	defer log.Sync() //nolint:errcheck // Nothing to do on sync failure

	log.Debug("configuration", zap.Stringer("config", cfg))

	now := time.Now()
	outputPath := filepath.Join(cfg.OutputDir, report.FileName(now))

	c.banner("FOLDER ANALYSIS WORKFLOW", false)

	snap, err := c.scan(ctx, cfg, log)
	if err != nil {
		return err
	}

	c.banner("GENERATING REPORT", true)

	renderer := report.NewRenderer(c.fs, log, report.Options{
		TempDir: cfg.TempDir,
		Now:     func() time.Time { return now },
	})

	if err := renderer.Render(snap, outputPath); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "PDF report generated successfully: %s\n", outputPath)

	if cfg.SkipEmail {
		log.Info("email delivery skipped")
	} else {
		c.banner("SENDING EMAIL", true)

		if err := c.dispatcher(cfg, log).Send(ctx, cfg.Recipient, outputPath, cfg.Subject); err != nil {
			return err
		}

		fmt.Fprintf(c.stdout, "Email sent successfully to %s\n", cfg.Recipient)
	}

	c.banner("WORKFLOW COMPLETED SUCCESSFULLY!", true)

	return nil
}

func (c CLI) dispatcher(cfg config.Config, log *zap.Logger) dispatcher {
	if c.mailer != nil {
		return c.mailer
	}

	return mailer.New(c.fs, log, mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.Sender,
		Password: cfg.Password,
	})
}

// printError writes the error followed by its chain of causes, outermost first.
// Joined errors are expanded one branch per line.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "\nError: %v\n", err)

	causes := unwrapAll(err)
	if len(causes) == 0 {
		return
	}

	fmt.Fprintln(w, "Caused by:")

	for i, cause := range causes {
		fmt.Fprintf(w, "  %d) %v\n", i+1, cause)
	}
}

// unwrapAll returns every error wrapped by err, depth first, excluding err itself.
func unwrapAll(err error) []error {
	var causes []error

	var next []error

	switch e := err.(type) { //nolint:errorlint // Walking the chain by hand
	case interface{ Unwrap() error }:
		if inner := e.Unwrap(); inner != nil {
			next = []error{inner}
		}
	case interface{ Unwrap() []error }:
		next = e.Unwrap()
	}

	for _, inner := range next {
		causes = append(causes, inner)
		causes = append(causes, unwrapAll(inner)...)
	}

	return causes
}
