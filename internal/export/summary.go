package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"git.home.luguber.info/inful/mdx2md/internal/metrics"
)

// Output is a document written (or confirmed unchanged) by a run.
type Output struct {
	Source      string `json:"source"`
	OutputRel   string `json:"output"`
	Platform    string `json:"platform"`
	Product     string `json:"product"`
	Title       string `json:"title,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Changed     bool   `json:"changed"`
}

// Failure is a job that ended with a fatal conversion error.
type Failure struct {
	Source   string `json:"source"`
	Platform string `json:"platform"`
	Stage    string `json:"stage,omitempty"`
	Message  string `json:"message"`
}

// Summary reports a finished run.
type Summary struct {
	RunID     string         `json:"run_id"`
	Commit    string         `json:"commit,omitempty"`
	Start     time.Time      `json:"start"`
	End       time.Time      `json:"end"`
	Converted int            `json:"converted"`
	Unchanged int            `json:"unchanged"`
	Failed    int            `json:"failed"`
	Warnings  map[string]int `json:"warnings"` // by kind
	Skipped   []Skip         `json:"skipped,omitempty"`
	Failures  []Failure      `json:"failures,omitempty"`
	Outputs   []Output       `json:"outputs"`
	Canceled  bool           `json:"canceled,omitempty"`
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration { return s.End.Sub(s.Start) }

// WarningCount is the number of warnings of every kind.
func (s *Summary) WarningCount() int {
	n := 0
	for _, c := range s.Warnings {
		n += c
	}
	return n
}

// Outcome derives the run outcome used for metrics and exit codes.
func (s *Summary) Outcome() metrics.OutcomeLabel {
	switch {
	case s.Canceled:
		return metrics.OutcomeCanceled
	case s.Failed > 0:
		return metrics.OutcomeFailed
	case s.WarningCount() > 0:
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomeSuccess
	}
}

// Print writes a human-readable summary.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Export %s finished in %s: %d converted, %d unchanged, %d failed, %d warnings\n",
		s.RunID, s.Duration().Round(time.Millisecond), s.Converted, s.Unchanged, s.Failed, s.WarningCount())
	if len(s.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped %d documents without a product mapping\n", len(s.Skipped))
	}
	kinds := make([]string, 0, len(s.Warnings))
	for k := range s.Warnings {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-22s %d\n", k, s.Warnings[k])
	}
	for _, f := range s.Failures {
		platform := f.Platform
		if platform == "" {
			platform = "default"
		}
		fmt.Fprintf(w, "FAILED %s [%s] %s: %s\n", f.Source, platform, f.Stage, f.Message)
	}
}
