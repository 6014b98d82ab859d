package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep"
	"github.com/input-output-hk/catalyst-forge-libs/aws/bucketsweep/sweeptypes"
)

// colorReporter prints progress lines for operators.
// Account sweeps may run in parallel, so every write holds mu.
type colorReporter struct {
	mu  sync.Mutex
	out io.Writer

	red    *color.Color
	green  *color.Color
	yellow *color.Color
}

var _ sweeptypes.Reporter = (*colorReporter)(nil)

func newColorReporter(out io.Writer, noColor bool) *colorReporter {
	r := &colorReporter{
		out:    out,
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
	}
	if noColor {
		r.red.DisableColor()
		r.green.DisableColor()
		r.yellow.DisableColor()
	}
	return r
}

func (r *colorReporter) printf(c *color.Color, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf(format, args...)
	if c != nil {
		line = c.Sprint(line)
	}
	_, _ = fmt.Fprintln(r.out, line)
}

func (r *colorReporter) AccountIgnored(account sweeptypes.Account) {
	r.printf(r.yellow, "Ignoring account %s, which is %s", account.ID, account.Status)
}

func (r *colorReporter) AccountStarted(accountID string) {
	r.printf(nil, "In account: %s", accountID)
}

func (r *colorReporter) AccountFailed(accountID string, err error) {
	r.printf(r.red, "COULD NOT process account %s: %v", accountID, err)
}

func (r *colorReporter) BucketDeleted(_ string, bucket string, _ sweeptypes.PurgeResult) {
	r.printf(r.green, "\tDeleted bucket: %s", bucket)
}

func (r *colorReporter) PurgeFailed(_ string, bucket string, purge sweeptypes.PurgeResult) {
	r.printf(r.red, "\tCOULD NOT delete objects in bucket %s: %v", bucket, bucketsweep.PurgeError(purge))
}

func (r *colorReporter) BucketFailed(_ string, bucket string, err error) {
	r.printf(r.red, "\tCOULD NOT delete bucket %s: %v", bucket, err)
}

// Summary prints the totals of a finished run.
func (r *colorReporter) Summary(report *sweeptypes.Report) {
	c := r.green
	if report.Failed() {
		c = r.red
	}
	r.printf(c, "Run %s: %d bucket(s) deleted, %d object version(s) removed, %d bucket(s) failed, %d account(s) failed, %d account(s) ignored in %s",
		report.RunID,
		report.BucketsDeleted(),
		report.ObjectsDeleted(),
		report.BucketFailures(),
		report.AccountFailures(),
		len(report.Ignored),
		report.Duration().Round(time.Millisecond),
	)
}
