// Package metrics defines observability hooks for site builds.
package metrics

import "time"

// Recorder receives build observations. Implementations may forward to
// Prometheus or stay in-process; the generator always talks to the interface
// so metrics remain optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|failed
	IncNodeWritten(kind string)     // kind: page|resource|stylesheet|folder
}

// NoopRecorder is the default Recorder when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) IncNodeWritten(string)              {}
