// Command bucketsweep deletes every bucket whose name starts with a prefix
// across all active accounts of an AWS organization.
//
// Usage:
//
//	bucketsweep [flags] <bucket-prefix>
//
// Progress lines go to stdout, structured logs to stderr. The exit code is 0
// when every matching bucket was deleted, 1 when anything was left behind or
// the run aborted, and 2 on usage errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep"
	sweeperrors "github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// sweeper runs one sweep.
type sweeper interface {
	Run(ctx context.Context) (*sweeptypes.Report, error)
}

// sweeperFactory builds the sweeper for a prefix.
type sweeperFactory func(ctx context.Context, prefix string, opts ...sweeptypes.Option) (sweeper, error)

func newCleaner(ctx context.Context, prefix string, opts ...sweeptypes.Option) (sweeper, error) {
	return bucketsweep.New(ctx, prefix, opts...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr, newCleaner)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, factory sweeperFactory) int {
	app := newApp(stdout, stderr, factory)

	err := app.RunContext(ctx, args)
	if err == nil {
		return exitOK
	}

	_, _ = fmt.Fprintln(stderr, err)

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return exitFailure
}

func newApp(stdout, stderr io.Writer, factory sweeperFactory) *cli.App {
	return &cli.App{
		Name:      "bucketsweep",
		Usage:     "Delete prefixed S3 buckets, with every object version, across an AWS organization",
		ArgsUsage: "<bucket-prefix>",
		Flags:     flags(),
		Writer:    stdout,
		ErrWriter: stderr,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return cli.Exit(err.Error(), exitUsage)
		},
		// Exit codes are resolved by run, never by os.Exit inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			return sweep(c, stdout, stderr, factory)
		},
	}
}

func sweep(c *cli.Context, stdout, stderr io.Writer, factory sweeperFactory) error {
	if c.NArg() == 0 {
		return cli.Exit("missing argument: bucket prefix", exitUsage)
	}
	if c.NArg() > 1 {
		return cli.Exit(fmt.Sprintf("expected exactly one bucket prefix, got %d arguments", c.NArg()), exitUsage)
	}
	prefix := c.Args().First()

	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	logger, err := newLogger(stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	reporter := newColorReporter(stdout, s.NoColor)

	cleaner, err := factory(c.Context, prefix, s.options(logger, reporter)...)
	if err != nil {
		if sweeperrors.IsInvalidInput(err) {
			return cli.Exit(err.Error(), exitUsage)
		}
		return cli.Exit(err.Error(), exitFailure)
	}

	report, err := cleaner.Run(c.Context)
	if report != nil {
		reporter.Summary(report)
	}
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	return nil
}
