package skyreduce

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// BarReporter draws one progress bar per phase; unsized phases get a spinner.
type BarReporter struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	outer Stage
	t0    time.Time
}

// NewBarReporter returns a fresh bar reporter for one job.
func NewBarReporter(w io.Writer) *BarReporter {
	return &BarReporter{w: w}
}

func (r *BarReporter) Report(e Event) {
	switch e.Step {
	case StepBegin:
		if r.outer == "" {
			r.outer = e.Stage
			r.t0 = time.Now()
		}

		if e.Stage == StageMapReduce {
			return
		}

		total := -1
		if n, ok := e.Size.Len(); ok {
			total = n
		}

		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(string(e.Stage)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
		)

	case StepStep:
		if r.bar != nil {
			_ = r.bar.Add(1)
		}

	case StepEnd:
		if r.bar != nil && e.Stage != StageMapReduce {
			_ = r.bar.Finish()
			fmt.Fprintln(r.w)
			r.bar = nil
		}

		if e.Stage == r.outer {
			fmt.Fprintf(r.w, "%s done in %.2f sec\n", r.outer, time.Since(r.t0).Seconds())
			r.outer = ""
		}
	}
}
