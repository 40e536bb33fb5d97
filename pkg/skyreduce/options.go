package skyreduce

import "os"

// Option configures a single MapUnordered, MapReduce or MapReduceBig call.
type Option func(*options)

type options struct {
	reporter Reporter
	stage    Stage
}

// WithProgress sets the observer for the call. Use Discard to silence it.
func WithProgress(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithStage labels the progress events of a plain MapUnordered call.
func WithStage(stage Stage) Option {
	return func(o *options) {
		o.stage = stage
	}
}

func newOptions(stage Stage, opts []Option) options {
	o := options{stage: stage}
	for _, opt := range opts {
		opt(&o)
	}

	// Default reporter is per call, never shared between jobs
	if o.reporter == nil {
		o.reporter = NewDefaultReporter(os.Stderr)
	}

	return o
}
