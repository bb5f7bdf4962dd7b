package driver

import (
	"bytes"
	"time"

	"lumen/internal/decls"
	"lumen/internal/diag"
	"lumen/internal/lower"
	"lumen/internal/observ"
	"lumen/internal/project"
	"lumen/internal/source"
)

// UnitResult is the outcome of one unit manifest.
type UnitResult struct {
	Namespace string
	Path      string
	File      source.FileID
	Meta      *project.UnitMeta // nil when the file could not be decoded
	Bag       *diag.Bag
	Broken    bool
	Cached    bool
	Elapsed   time.Duration // time spent lowering or restoring

	// Set for lowered units only.
	DeclObject string
	Order      []*decls.ClassDecl
	Exports    *lower.ExportTable
	JS         []byte
}

// LowerResult collects everything Lower produced.
type LowerResult struct {
	FileSet  *source.FileSet
	Program  *decls.Program
	Naming   *decls.Mangler
	Registry *lower.Registry

	Units   []*UnitResult // in input order
	Order   []*UnitResult // lowered units, dependencies first
	Batches [][]string    // namespaces per Kahn wave

	Bag          *diag.Bag // every diagnostic, sorted
	TimingReport observ.Report
}

func (r *LowerResult) finish(opts *LowerOptions, timer *observ.Timer) {
	total := 0
	for _, u := range r.Units {
		total += u.Bag.Len()
		if u.Bag.HasErrors() {
			u.Broken = true
		}
	}
	r.Bag = diag.NewBag(max(total, opts.MaxDiagnostics, 1))
	for _, u := range r.Units {
		r.Bag.Merge(u.Bag)
	}
	r.Bag.Sort()
	r.Bag.Dedup()

	r.TimingReport = timer.Report()
	if opts.EnableTimings {
		appendTimingDiagnostic(r.Bag, timingPayload{
			Kind:    "lower",
			TotalMS: r.TimingReport.TotalMS,
			Phases:  r.TimingReport.Phases,
			Units:   unitTimings(r.Order),
		})
	}
}

// HasErrors reports whether any unit failed.
func (r *LowerResult) HasErrors() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// Unit returns the result of namespace.
func (r *LowerResult) Unit(namespace string) (*UnitResult, bool) {
	if r == nil {
		return nil, false
	}
	for _, u := range r.Units {
		if u.Meta != nil && u.Namespace == namespace {
			return u, true
		}
	}
	return nil, false
}

// Link concatenates the prelude and the statements of every lowered unit in
// dependency order. Broken units contribute nothing.
func (r *LowerResult) Link(prelude string) []byte {
	var b bytes.Buffer
	if prelude != "" {
		b.WriteString(prelude)
		if prelude[len(prelude)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	for _, u := range r.Order {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.Write(u.JS)
	}
	return b.Bytes()
}
