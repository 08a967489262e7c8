// Package metrics exposes build observability hooks for the discovery
// artifacts. A NoopRecorder is used when metrics are disabled.
package metrics

import "time"

// ResultLabel enumerates artifact build outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder receives artifact build observations. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObserveArtifactDuration(artifact string, d time.Duration)
	IncArtifactResult(artifact string, result ResultLabel)
	IncRenderFailure()
	SetPostCount(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveArtifactDuration(string, time.Duration) {}
func (NoopRecorder) IncArtifactResult(string, ResultLabel)         {}
func (NoopRecorder) IncRenderFailure()                             {}
func (NoopRecorder) SetPostCount(int)                              {}
