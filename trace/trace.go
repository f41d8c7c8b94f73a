// Package trace gives every package in this module a uniform way to reach
// the schuko tracer without each of them re-deriving the trace key.
package trace

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// P returns the tracer for a component of the extraction pipeline, e.g.
// trace.P("lines") traces under key "extract.lines".
func P(area string) tracing.Trace {
	return tracing.Select("extract." + area)
}

// Core returns the core (un-keyed) tracer, for call sites that don't belong
// to one specific package.
func Core() tracing.Trace {
	return gtrace.CoreTracer
}
