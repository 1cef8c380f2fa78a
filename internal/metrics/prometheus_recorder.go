package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdx2md"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	documentDuration *prom.HistogramVec
	documentResults  *prom.CounterVec
	warnings         *prom.CounterVec
	assetsCopied     prom.Counter
	exportDuration   prom.Histogram
	exportOutcomes   *prom.CounterVec
	lastExport       prom.Gauge
}

// NewPrometheusRecorder constructs the export metrics and registers them on reg (a new
// registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		documentDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Duration of single document conversions",
			Buckets:   prom.DefBuckets,
		}, []string{"platform"}),
		documentResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_results_total",
			Help:      "Document results by outcome",
		}, []string{"result"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Recoverable conversion warnings by kind",
		}, []string{"kind"}),
		assetsCopied: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "assets_copied_total",
			Help:      "Images copied into the output tree",
		}),
		exportDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Total batch export duration",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		exportOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_outcomes_total",
			Help:      "Batch export outcomes by final status",
		}, []string{"outcome"}),
		lastExport: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_export_timestamp_seconds",
			Help:      "Unix time of the last finished export",
		}),
	}
	reg.MustRegister(pr.documentDuration, pr.documentResults, pr.warnings, pr.assetsCopied,
		pr.exportDuration, pr.exportOutcomes, pr.lastExport)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveDocumentDuration(platform string, d time.Duration) {
	if p == nil {
		return
	}
	p.documentDuration.WithLabelValues(platform).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.documentResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddWarnings(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.warnings.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) AddAssetsCopied(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.assetsCopied.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveExportDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.exportDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncExportOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.exportOutcomes.WithLabelValues(string(outcome)).Inc()
	p.lastExport.SetToCurrentTime()
}

// WriteTextfile writes the current metrics in the text exposition format, for the node
// exporter textfile collector. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
