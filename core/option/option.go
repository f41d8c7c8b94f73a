// Package option holds the small set of switches the join engine accepts,
// analogous to the teacher's parameter registers but far smaller in scope:
// the page joiner and the docx emitter read exactly three booleans, so a functional-options constructor is a better fit than the
// teacher's TeX-register machinery (see DESIGN.md).
package option

// Options configures a single join run.
type Options struct {
	// Autosplit forces a span split whenever a char's pre-transform y
	// differs from its predecessor's, a diagnostic mode used to verify the
	// refinement heuristics against ground truth (spec §3 "Supplemented
	// Features").
	Autosplit bool

	// Spacing makes the docx emitter insert an empty paragraph ahead of
	// every paragraph, and a second one where the ctm4 changes. It does not
	// affect the line and paragraph assemblers, whose synthetic spaces are
	// always inserted.
	Spacing bool

	// LayoutAnalysis enables table reconstruction. When false, tables are
	// left unreconstructed and their spans flow into the surrounding
	// paragraphs like any other text.
	LayoutAnalysis bool
}

// Option mutates an Options value.
type Option func(*Options)

// Default returns the engine's default configuration: spacing and layout
// analysis on, autosplit off.
func Default() Options {
	return Options{
		Autosplit:      false,
		Spacing:        true,
		LayoutAnalysis: true,
	}
}

// New builds an Options from Default(), applying opts in order.
func New(opts ...Option) Options {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithAutosplit sets the Autosplit diagnostic flag.
func WithAutosplit(on bool) Option {
	return func(o *Options) { o.Autosplit = on }
}

// WithSpacing sets the Spacing flag.
func WithSpacing(on bool) Option {
	return func(o *Options) { o.Spacing = on }
}

// WithLayoutAnalysis sets the LayoutAnalysis flag.
func WithLayoutAnalysis(on bool) Option {
	return func(o *Options) { o.LayoutAnalysis = on }
}
