package lower

import (
	"context"
	"errors"
	"strconv"

	"lumen/internal/decls"
	"lumen/internal/jsast"
	"lumen/internal/trace"
)

// Options tune the generated initializer.
type Options struct {
	// DeclarationsName is the base name of the declarations object; the
	// namespace identifier is prepended for non-root namespaces.
	DeclarationsName string
	// Freeze wraps the returned object in Object.freeze.
	Freeze bool
	// Runtime is the identifier of the runtime prelude object.
	Runtime string
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{DeclarationsName: "classes", Freeze: true, Runtime: "$lumen"}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DeclarationsName == "" {
		o.DeclarationsName = def.DeclarationsName
	}
	if o.Runtime == "" {
		o.Runtime = def.Runtime
	}
	return o
}

// Config describes one unit to lower.
type Config struct {
	Namespace string
	// NamespaceIdent prefixes the declarations object name; empty for the root.
	NamespaceIdent string
	Classes        ClassSource
	Naming         Naming
	Body           BodyLowerer // nil means RuntimeBodyLowerer
	Imports        ExportSource
	// Module is the scope the declarations object is declared in; nil creates
	// a fresh root scope.
	Module  *jsast.Scope
	Options Options
}

type unitState uint8

const (
	statePending unitState = iota
	stateBuilt
	stateFailed
)

// Translator lowers the classes of one namespace. It runs once; later calls
// return the first result.
type Translator struct {
	cfg    Config
	module *jsast.Scope

	state      unitState
	err        error
	order      []*decls.ClassDecl
	declObject *jsast.Name
	stmt       *jsast.Var
	exports    *ExportTable
}

func NewTranslator(cfg Config) *Translator {
	cfg.Options = cfg.Options.withDefaults()
	if cfg.Body == nil {
		cfg.Body = RuntimeBodyLowerer{}
	}
	module := cfg.Module
	if module == nil {
		module = jsast.NewRootScope("module " + cfg.Namespace)
		module.Reserve(cfg.Options.Runtime, "Object")
	}
	return &Translator{cfg: cfg, module: module}
}

// GenerateDeclarations builds `var <classes> = (function () {...})();` for
// the namespace. A failed unit keeps its error and exposes no output.
func (t *Translator) GenerateDeclarations(ctx context.Context) (*jsast.Var, error) {
	switch t.state {
	case stateBuilt:
		return t.stmt, nil
	case stateFailed:
		return nil, t.err
	}
	stmt, err := t.generate(ctx)
	if err != nil {
		t.state, t.err = stateFailed, err
		return nil, err
	}
	t.state, t.stmt = stateBuilt, stmt
	return stmt, nil
}

func (t *Translator) generate(ctx context.Context) (*jsast.Var, error) {
	if t.cfg.Classes == nil || t.cfg.Naming == nil {
		return nil, errors.New("translator: class source and naming are required")
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)
	classes := t.cfg.Classes.ClassesIn(t.cfg.Namespace)

	span := trace.Begin(tracer, trace.ScopePass, "sort", parent)
	order, err := SortByInheritance(classes, t.cfg.Classes)
	span.End(strconv.Itoa(len(order)))
	if err != nil {
		return nil, err
	}

	base := t.cfg.Options.DeclarationsName
	if t.cfg.NamespaceIdent != "" {
		base = t.cfg.NamespaceIdent + "$" + base
	}
	declObject := t.module.DeclareFreshName(base)
	fn := jsast.NewFunction(t.module, "classes")

	span = trace.Begin(tracer, trace.ScopePass, "emit", parent)
	lctx := &Context{
		Namespace:  t.cfg.Namespace,
		Classes:    t.cfg.Classes,
		Naming:     t.cfg.Naming,
		Aliases:    NewAliasScope(fn.Scope),
		DeclObject: declObject,
		Imports:    t.cfg.Imports,
		Runtime:    t.cfg.Options.Runtime,
		tracer:     tracer,
		span:       span.ID(),
	}
	res, err := NewEmitter(lctx, t.cfg.Body, t.cfg.Naming).Emit(order)
	span.End("")
	if err != nil {
		return nil, err
	}

	span = trace.Begin(tracer, trace.ScopePass, "initializer", parent)
	stmt, err := BuildInitializer(fn, declObject, res, t.cfg.Options.Freeze)
	span.End(declObject.Ident())
	if err != nil {
		return nil, err
	}

	t.order = order
	t.declObject = declObject
	t.exports = NewExportTable(t.cfg.Namespace, declObject.Ident(), classes, t.cfg.Naming)
	return stmt, nil
}

// Order returns the inheritance order used by the initializer.
func (t *Translator) Order() ([]*decls.ClassDecl, error) {
	if t.state != stateBuilt {
		return nil, t.notReady()
	}
	return t.order, nil
}

// DeclarationsObjectName returns the module-level name of the declarations object.
func (t *Translator) DeclarationsObjectName() (*jsast.Name, error) {
	if t.state != stateBuilt {
		return nil, t.notReady()
	}
	return t.declObject, nil
}

// DeclarationsStatement returns the initializer statement.
func (t *Translator) DeclarationsStatement() (*jsast.Var, error) {
	if t.state != stateBuilt {
		return nil, t.notReady()
	}
	return t.stmt, nil
}

// ExportsFor returns the export table of namespace. The own namespace is
// available once GenerateDeclarations succeeded; other namespaces come from
// the configured ExportSource.
func (t *Translator) ExportsFor(namespace string) (*ExportTable, error) {
	if namespace != t.cfg.Namespace {
		if t.cfg.Imports == nil {
			return nil, &NotReadyError{Namespace: namespace}
		}
		return t.cfg.Imports.ExportsFor(namespace)
	}
	if t.state != stateBuilt {
		return nil, t.notReady()
	}
	return t.exports, nil
}

func (t *Translator) notReady() error {
	if t.state == stateFailed {
		return t.err
	}
	return &NotReadyError{Namespace: t.cfg.Namespace}
}
