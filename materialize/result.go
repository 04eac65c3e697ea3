package materialize

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDescriptor marks a descriptor without a language code.
	ErrMalformedDescriptor = errors.New("descriptor has no language code")
	// ErrUnsafeLanguageCode marks a code that is not a single path segment.
	ErrUnsafeLanguageCode = errors.New("language code is not a single path segment")
	// ErrLocaleNotProcessed marks a locale whose task ended without a result.
	ErrLocaleNotProcessed = errors.New("locale was not processed")
)

// ReasonFiltered is the skip reason for locales outside the include filter.
const ReasonFiltered = "filtered"

type Status int

const (
	StatusUnknown Status = iota
	StatusWritten
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusWritten:
		return "written"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of one locale. Path is the sink location the file
// was, or would have been, written to.
type Result struct {
	Locale string
	Status Status
	Path   string
	Reason string
	Err    error
}

// Report collects the results of a run in descriptor order.
type Report struct {
	Results []Result
	Written int
	Skipped int
	Failed  int
}

func newReport(results []Result) *Report {
	r := &Report{Results: results}
	for _, res := range results {
		switch res.Status {
		case StatusWritten:
			r.Written++
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		}
	}
	return r
}

func (r *Report) Total() int {
	return len(r.Results)
}

// Summary is a one line, untranslated tally for logs.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d locales: %d written, %d skipped, %d failed",
		r.Total(), r.Written, r.Skipped, r.Failed)
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}
