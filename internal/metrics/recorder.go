package metrics

import "time"

// ResultLabel enumerates per-document export results.
type ResultLabel string

const (
	ResultConverted ResultLabel = "converted"
	ResultUnchanged ResultLabel = "unchanged"
	ResultFailed    ResultLabel = "failed"
)

// OutcomeLabel enumerates export run outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeWarning  OutcomeLabel = "warning"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder receives export metrics. NoopRecorder is used when metrics are not configured.
type Recorder interface {
	ObserveDocumentDuration(platform string, d time.Duration)
	IncDocumentResult(result ResultLabel)
	AddWarnings(kind string, n int)
	AddAssetsCopied(n int)
	ObserveExportDuration(d time.Duration)
	IncExportOutcome(outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveDocumentDuration(string, time.Duration) {}
func (NoopRecorder) IncDocumentResult(ResultLabel)                 {}
func (NoopRecorder) AddWarnings(string, int)                       {}
func (NoopRecorder) AddAssetsCopied(int)                           {}
func (NoopRecorder) ObserveExportDuration(time.Duration)           {}
func (NoopRecorder) IncExportOutcome(OutcomeLabel)                 {}
