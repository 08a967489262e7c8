package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, pr *PrometheusRecorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusRecorderCounts(t *testing.T) {
	pr := NewPrometheusRecorder(prom.NewRegistry())

	pr.IncArtifactResult("rss.xml", ResultSuccess)
	pr.IncArtifactResult("rss.xml", ResultSuccess)
	pr.IncArtifactResult("rss.xml", ResultFailure)
	pr.IncRenderFailure()
	pr.SetPostCount(7)
	pr.ObserveArtifactDuration("rss.xml", 15*time.Millisecond)

	out := scrape(t, pr)
	assert.Contains(t, out, `pubfeed_artifact_results_total{artifact="rss.xml",result="success"} 2`)
	assert.Contains(t, out, `pubfeed_artifact_results_total{artifact="rss.xml",result="failure"} 1`)
	assert.Contains(t, out, "pubfeed_render_failures_total 1")
	assert.Contains(t, out, "pubfeed_posts 7")
	assert.Contains(t, out, `pubfeed_artifact_duration_seconds_count{artifact="rss.xml"} 1`)
}

func TestPrometheusRecorderNilRegistry(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetPostCount(3)
	assert.Contains(t, scrape(t, pr), "pubfeed_posts 3")
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncRenderFailure()
	r.SetPostCount(1)
	r.ObserveArtifactDuration("x", time.Second)
	r.IncArtifactResult("x", ResultSuccess)
}
