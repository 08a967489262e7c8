package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg              *prom.Registry
	artifactDuration *prom.HistogramVec
	artifactResults  *prom.CounterVec
	renderFailures   prom.Counter
	posts            prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		artifactDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pubfeed",
			Name:      "artifact_duration_seconds",
			Help:      "Time to build one discovery artifact",
			Buckets:   prom.DefBuckets,
		}, []string{"artifact"}),
		artifactResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pubfeed",
			Name:      "artifact_results_total",
			Help:      "Artifact builds by outcome",
		}, []string{"artifact", "result"}),
		renderFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "pubfeed",
			Name:      "render_failures_total",
			Help:      "Post bodies that failed to render and were emitted empty",
		}),
		posts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pubfeed",
			Name:      "posts",
			Help:      "Posts included in the last build",
		}),
	}
	reg.MustRegister(pr.artifactDuration, pr.artifactResults, pr.renderFailures, pr.posts)
	return pr
}

// ObserveArtifactDuration records how long an artifact took to build.
func (p *PrometheusRecorder) ObserveArtifactDuration(artifact string, d time.Duration) {
	p.artifactDuration.WithLabelValues(artifact).Observe(d.Seconds())
}

// IncArtifactResult counts one build of artifact with the given outcome.
func (p *PrometheusRecorder) IncArtifactResult(artifact string, result ResultLabel) {
	p.artifactResults.WithLabelValues(artifact, string(result)).Inc()
}

// IncRenderFailure counts a post whose content degraded to empty.
func (p *PrometheusRecorder) IncRenderFailure() {
	p.renderFailures.Inc()
}

// SetPostCount records the number of posts in the most recent build.
func (p *PrometheusRecorder) SetPostCount(n int) {
	p.posts.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}
