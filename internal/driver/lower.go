package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"lumen/internal/decls"
	"lumen/internal/diag"
	"lumen/internal/jsast"
	"lumen/internal/jsprint"
	"lumen/internal/lower"
	"lumen/internal/observ"
	"lumen/internal/project"
	"lumen/internal/project/dag"
	"lumen/internal/source"
	"lumen/internal/trace"
)

// LowerOptions configures Lower.
type LowerOptions struct {
	Jobs           int
	MaxDiagnostics int
	Lower          lower.Options
	Print          jsprint.Options
	DiskCache      *DiskCache // nil disables the disk cache
	Memory         *UnitCache // nil disables the in-process cache
	EnableTimings  bool
	PhaseObserver  PhaseObserver
	UnitObserver   UnitObserver
}

// Lower loads the unit manifests in files, orders the namespaces by their
// imports and lowers every namespace whose dependencies lowered cleanly.
// Namespaces of one Kahn wave are lowered concurrently. Diagnostics never
// make Lower fail; the returned error is for cancellation only.
func Lower(ctx context.Context, files []string, opts *LowerOptions) (*LowerResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := LowerOptions{}
	if opts != nil {
		o = *opts
	}
	opts = &o
	def := lower.DefaultOptions()
	if opts.Lower == (lower.Options{}) {
		opts.Lower = def
	}
	if opts.Lower.DeclarationsName == "" {
		opts.Lower.DeclarationsName = def.DeclarationsName
	}
	if opts.Lower.Runtime == "" {
		opts.Lower.Runtime = def.Runtime
	}
	ctx, root := trace.Start(ctx, trace.ScopeDriver, "lower")
	defer root.End("")

	timer := observ.NewTimer()
	ph := phases{observer: opts.PhaseObserver, timer: timer}
	res := &LowerResult{FileSet: source.NewFileSet(), Registry: lower.NewRegistry()}
	defer res.finish(opts, timer)

	// load
	end := ph.begin("load")
	loaded, err := LoadUnits(ctx, res.FileSet, files, opts.MaxDiagnostics, opts.Jobs)
	end(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return res, err
	}

	// order
	end = ph.begin("order")
	g := newGraph(res, loaded)
	end(fmt.Sprintf("%d waves", len(g.topo.Batches)))

	// lower
	end = ph.begin("lower")
	env := &lowerEnv{
		prog:     res.Program,
		naming:   res.Naming,
		registry: res.Registry,
		opts:     opts,
	}
	err = g.lowerWaves(ctx, env)
	end(fmt.Sprintf("%d units", len(res.Order)))
	return res, err
}

type phases struct {
	observer PhaseObserver
	timer    *observ.Timer
}

func (p phases) begin(name string) func(note string) {
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	start := time.Now()
	stop := p.timer.Track(name)
	return func(note string) {
		stop(note)
		if p.observer != nil {
			p.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
		}
	}
}

// unitGraph ties dag slots to unit results.
type unitGraph struct {
	res    *LowerResult
	idx    dag.UnitIndex
	graph  dag.Graph
	slots  []dag.UnitSlot
	topo   *dag.Topo
	unitOf map[*project.UnitMeta]*UnitResult
	static []bool // broken before lowering started
}

func newGraph(res *LowerResult, loaded []LoadedUnit) *unitGraph {
	router := diag.NewFileRouter(nil)
	metas := make([]*project.UnitMeta, 0, len(loaded))
	nodes := make([]dag.UnitNode, 0, len(loaded))
	g := &unitGraph{res: res, unitOf: make(map[*project.UnitMeta]*UnitResult, len(loaded))}

	for _, lu := range loaded {
		u := &UnitResult{Path: lu.Path, File: lu.FileID, Meta: lu.Meta, Bag: lu.Bag}
		res.Units = append(res.Units, u)
		if lu.Meta == nil {
			u.Broken = true
			continue
		}
		u.Namespace = lu.Meta.Namespace
		reporter := diag.BagReporter{Bag: lu.Bag}
		router.Route(lu.FileID, reporter)
		g.unitOf[lu.Meta] = u
		metas = append(metas, lu.Meta)
		nodes = append(nodes, dag.UnitNode{Meta: lu.Meta, Reporter: reporter})
	}

	res.Program, _ = project.BuildProgram(metas, router)
	res.Naming = decls.NewMangler(res.Program)

	g.idx = dag.BuildIndex(metas)
	g.graph, g.slots = dag.BuildGraph(g.idx, nodes)
	g.topo = dag.ToposortKahn(g.graph)
	dag.ReportCycles(g.idx, g.slots, g.topo)

	g.static = make([]bool, len(g.slots))
	for i := range g.slots {
		slot := &g.slots[i]
		if !slot.Present {
			continue
		}
		if u := g.unitOf[slot.Meta]; u != nil && u.Bag.HasErrors() {
			slot.Broken = true
		}
		if slot.Broken {
			slot.FirstErr = firstError(g.unitOf[slot.Meta])
			g.static[i] = true
		}
	}
	dag.ReportBrokenDeps(g.idx, g.slots)
	ComputeUnitHashes(g.graph, g.slots, g.topo)

	for _, batch := range g.topo.Batches {
		names := make([]string, 0, len(batch))
		for _, id := range batch {
			names = append(names, g.idx.IDToName[int(id)])
		}
		res.Batches = append(res.Batches, names)
	}
	return g
}

func firstError(u *UnitResult) *diag.Diagnostic {
	if u == nil {
		return nil
	}
	for _, d := range u.Bag.Items() {
		if d.IsError() {
			return &d
		}
	}
	return nil
}

func (g *unitGraph) lowerWaves(ctx context.Context, env *lowerEnv) error {
	jobs := env.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, batch := range g.topo.Batches {
		ready := make([]*UnitResult, 0, len(batch))
		for _, id := range batch {
			slot := &g.slots[int(id)]
			u := g.unitOf[slot.Meta]
			if u == nil {
				continue
			}
			if slot.Broken {
				u.Broken = true
				env.notify(UnitEvent{Namespace: u.Namespace, Path: u.Path, Status: UnitFailed})
				continue
			}
			if g.skipForBrokenDep(id, u) {
				slot.Broken = true
				slot.FirstErr = firstError(u)
				u.Broken = true
				env.notify(UnitEvent{Namespace: u.Namespace, Path: u.Path, Status: UnitSkipped})
				continue
			}
			ready = append(ready, u)
		}

		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(min(jobs, max(len(ready), 1)))
		for _, u := range ready {
			eg.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				env.lowerUnit(gctx, u)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}

		for _, id := range batch {
			slot := &g.slots[int(id)]
			u := g.unitOf[slot.Meta]
			if u == nil {
				continue
			}
			if u.Broken {
				slot.Broken = true
				slot.FirstErr = firstError(u)
				continue
			}
			g.res.Order = append(g.res.Order, u)
		}
	}
	return nil
}

// skipForBrokenDep reports the first broken import of u. Imports that were
// broken before lowering already carry ProjDependencyFailed.
func (g *unitGraph) skipForBrokenDep(id dag.UnitID, u *UnitResult) bool {
	for _, dep := range g.graph.Edges[int(id)] {
		depSlot := g.slots[int(dep)]
		if !depSlot.Broken {
			continue
		}
		if g.static[int(dep)] {
			return true
		}
		name := g.idx.IDToName[int(dep)]
		at := u.Meta.Span
		for _, imp := range u.Meta.Imports {
			if imp.Path == name {
				at = imp.Span
				break
			}
		}
		b := diag.ReportError(diag.BagReporter{Bag: u.Bag}, diag.LowerDependencyFailed, at,
			fmt.Sprintf("namespace %q was not lowered, so %q cannot reference its classes", name, u.Namespace))
		if depSlot.FirstErr != nil {
			b.WithNote(depSlot.FirstErr.Primary, "first error in dependency: "+depSlot.FirstErr.Message)
		}
		b.Emit()
		return true
	}
	return false
}

// lowerEnv is shared by the workers of a wave; everything in it is read-only
// except the Registry and the caches, which lock internally.
type lowerEnv struct {
	prog     *decls.Program
	naming   *decls.Mangler
	registry *lower.Registry
	opts     *LowerOptions
}

func (e *lowerEnv) notify(ev UnitEvent) {
	if e.opts.UnitObserver != nil {
		e.opts.UnitObserver(ev)
	}
}

func (e *lowerEnv) lowerUnit(ctx context.Context, u *UnitResult) {
	start := time.Now()
	e.notify(UnitEvent{Namespace: u.Namespace, Path: u.Path, Status: UnitStarted})
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit:"+u.Namespace)

	status, err := e.lowerOrRestore(ctx, u)
	if err != nil {
		u.Broken = true
		status = UnitFailed
	}
	span.WithExtra("cached", strconv.FormatBool(status == UnitCached)).End(u.DeclObject)
	u.Elapsed = time.Since(start)
	e.notify(UnitEvent{Namespace: u.Namespace, Path: u.Path, Status: status, Err: err, Elapsed: u.Elapsed})
}

func (e *lowerEnv) lowerOrRestore(ctx context.Context, u *UnitResult) (UnitStatus, error) {
	reporter := diag.BagReporter{Bag: u.Bag}
	key := artifactKey(u.Meta, e.opts.Lower, e.opts.Print.IndentWidth, e.identsFor(u.Meta))
	if art, ok := e.lookup(u.Namespace, key, reporter); ok && e.restore(u, art) {
		if err := e.registry.Register(u.Exports); err != nil {
			lower.ReportError(reporter, err, u.Meta.Span)
			return UnitFailed, err
		}
		u.Cached = true
		return UnitCached, nil
	}

	tr := lower.NewTranslator(lower.Config{
		Namespace:      u.Namespace,
		NamespaceIdent: e.naming.NamespaceIdent(u.Namespace),
		Classes:        e.prog,
		Naming:         e.naming,
		Imports:        e.registry,
		Options:        e.opts.Lower,
	})
	stmt, err := tr.GenerateDeclarations(ctx)
	if err != nil {
		lower.ReportError(reporter, err, u.Meta.Span)
		return UnitFailed, err
	}
	declObject, _ := tr.DeclarationsObjectName()
	order, _ := tr.Order()
	exports, _ := tr.ExportsFor(u.Namespace)

	stmts := []jsast.Stmt{stmt}
	if u.Namespace != "" {
		stmts = append(stmts, &jsast.ExprStmt{X: jsast.NewInvocation(
			jsast.QualifiedIdent("defineNamespace", jsast.IdentRef(e.opts.Lower.Runtime)),
			jsast.Str(u.Namespace), declObject.MakeRef(),
		)})
	}
	u.DeclObject = declObject.Ident()
	u.Order = order
	u.Exports = exports
	u.JS = jsprint.Stmts(stmts, e.opts.Print)

	if err := e.registry.Register(exports); err != nil {
		lower.ReportError(reporter, err, u.Meta.Span)
		return UnitFailed, err
	}
	e.store(key, u, reporter)
	return UnitLowered, nil
}

// identsFor lists the identifiers the printed unit depends on.
func (e *lowerEnv) identsFor(meta *project.UnitMeta) []string {
	idents := make([]string, 0, len(meta.Imports)+1)
	idents = append(idents, e.naming.NamespaceIdent(meta.Namespace))
	for _, imp := range meta.Imports {
		idents = append(idents, e.naming.NamespaceIdent(imp.Path))
	}
	return idents
}

func (e *lowerEnv) lookup(namespace string, key project.Digest, r diag.Reporter) (*UnitArtifact, bool) {
	if art, ok := e.opts.Memory.Get(namespace, key); ok {
		return art, true
	}
	art, ok, err := e.opts.DiskCache.Get(key)
	if err != nil {
		diag.ReportWarning(r, diag.IOCacheUnreadable, source.Span{},
			fmt.Sprintf("ignoring cache entry for %q: %v", namespace, err)).Emit()
		return nil, false
	}
	if ok {
		e.opts.Memory.Put(key, art)
	}
	return art, ok
}

// restore fills u from a cached artifact. The artifact is rejected when its
// export list no longer matches the declarations.
func (e *lowerEnv) restore(u *UnitResult, art *UnitArtifact) bool {
	if art == nil || art.Namespace != u.Namespace {
		return false
	}
	classes := e.prog.ClassesIn(u.Namespace)
	table := lower.NewExportTable(u.Namespace, art.DeclObject, classes, e.naming)
	if table.Len() != len(art.Exports) {
		return false
	}
	for i, entry := range table.Entries {
		rec := art.Exports[i]
		if entry.GlobalName != rec.Global || entry.Class.QualifiedName() != rec.Class {
			return false
		}
	}
	order, err := lower.SortByInheritance(classes, e.prog)
	if err != nil {
		return false
	}
	u.DeclObject = art.DeclObject
	u.Order = order
	u.Exports = table
	u.JS = art.JS
	return true
}

func (e *lowerEnv) store(key project.Digest, u *UnitResult, r diag.Reporter) {
	if e.opts.Memory == nil && e.opts.DiskCache == nil {
		return
	}
	art := &UnitArtifact{
		Schema:     diskCacheSchemaVersion,
		Namespace:  u.Namespace,
		DeclObject: u.DeclObject,
		Exports:    make([]ExportRecord, 0, u.Exports.Len()),
		JS:         u.JS,
	}
	for _, entry := range u.Exports.Entries {
		art.Exports = append(art.Exports, ExportRecord{Global: entry.GlobalName, Class: entry.Class.QualifiedName()})
	}
	e.opts.Memory.Put(key, art)
	if err := e.opts.DiskCache.Put(key, art); err != nil {
		diag.ReportWarning(r, diag.IOCacheUnreadable, source.Span{},
			fmt.Sprintf("failed to write cache entry for %q: %v", u.Namespace, err)).Emit()
	}
}
