// Package metrics records batch export metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics never need nil
// checks. PrometheusRecorder keeps the counters in a private registry that the CLI writes
// to a textfile after each export run.
package metrics
