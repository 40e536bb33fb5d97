package skyreduce

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Event is delivered to a Reporter at every phase and task boundary.
// Index is -1 on begin and end events.
type Event struct {
	Stage  Stage
	Step   Step
	Size   Size
	Index  int
	Result any
}

// Reporter observes progress. It is only ever called from the coordinator
// goroutine, never from workers.
type Reporter interface {
	Report(e Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(e Event)

func (f ReporterFunc) Report(e Event) {
	f(e)
}

// Discard ignores every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// pctStep is the granularity of the percentage indicator.
const pctStep = 5

// DefaultReporter renders a one-line textual indicator, e.g.
//
//	[m/r (1,024 elem): ::::::::::::::::::::|++++++++++++++++++++]  0.42 sec
//
// Sized phases get one tick per crossed 5%, unsized phases one tick per task.
type DefaultReporter struct {
	w   io.Writer
	now func() time.Time

	t0    time.Time
	outer Stage // stage of the outermost begin, empty when idle
	head  string

	sized bool
	total int
	at    int
	next  int
	sign  string
}

// NewDefaultReporter returns a fresh reporter for one job.
func NewDefaultReporter(w io.Writer) *DefaultReporter {
	return &DefaultReporter{w: w, now: time.Now}
}

func (r *DefaultReporter) Report(e Event) {
	switch e.Step {
	case StepBegin:
		r.begin(e)
	case StepStep:
		r.step()
	case StepEnd:
		r.end(e)
	}
}

func (r *DefaultReporter) begin(e Event) {
	if r.outer == "" {
		r.t0 = r.now()
		r.outer = e.Stage

		r.head = "m"
		if e.Stage == StageMapReduce {
			r.head = "m/r"
		}
	}

	if e.Stage == StageMapReduce {
		return
	}

	r.total, r.sized = e.Size.Len()
	r.at = 0
	r.next = pctStep

	switch {
	case e.Stage == StageReduce && r.outer == StageMapReduce:
		fmt.Fprint(r.w, "|")
	case r.sized:
		fmt.Fprintf(r.w, "[%s (%s elem): ", r.head, humanize.Comma(int64(r.total)))
	default:
		fmt.Fprintf(r.w, "[%s: ", r.head)
	}

	switch {
	case !r.sized:
		r.sign = "."
	case e.Stage == StageReduce:
		r.sign = "+"
	default:
		r.sign = ":"
	}
}

func (r *DefaultReporter) step() {
	r.at++

	if !r.sized {
		fmt.Fprint(r.w, r.sign)
		return
	}

	if r.total <= 0 {
		return
	}

	pct := 100 * r.at / r.total
	for r.next <= pct {
		fmt.Fprint(r.w, r.sign)
		r.next += pctStep
	}
}

func (r *DefaultReporter) end(e Event) {
	if e.Stage != r.outer {
		return
	}

	fmt.Fprintf(r.w, "]  %.2f sec\n", r.now().Sub(r.t0).Seconds())
	r.outer = ""
}
