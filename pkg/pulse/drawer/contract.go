// Package drawer renders pulse schedules for humans: an SVG timeline with
// one lane per channel, and a DOT precedence graph for graphviz tooling.
// The plain text renderer lives on Schedule itself; this package covers the
// richer formats.
package drawer

import (
	"io"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// Renderer turns a schedule into one output format.
type Renderer interface {
	// Render writes the drawn schedule to w.
	Render(sched *pulse.Schedule, w io.Writer) error
}
