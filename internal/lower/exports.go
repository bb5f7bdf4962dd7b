package lower

import (
	"fmt"
	"slices"
	"sync"

	"lumen/internal/decls"
	"lumen/internal/jsast"
)

// ExportEntry is one class of a namespace as seen by importers.
type ExportEntry struct {
	GlobalName string
	Class      *decls.ClassDecl
	Ref        jsast.Expr // <declObject>.<GlobalName>
}

// ExportTable lists every class of a lowered namespace. References point
// into the namespace's declarations object and never re-run its initializer.
type ExportTable struct {
	Namespace  string
	DeclObject string
	Entries    []ExportEntry

	byName  map[string]int
	byClass map[decls.ClassID]int
}

// NewExportTable builds the table for classes, in the given order.
func NewExportTable(namespace, declObject string, classes []*decls.ClassDecl, naming Naming) *ExportTable {
	t := &ExportTable{
		Namespace:  namespace,
		DeclObject: declObject,
		Entries:    make([]ExportEntry, 0, len(classes)),
		byName:     make(map[string]int, len(classes)),
		byClass:    make(map[decls.ClassID]int, len(classes)),
	}
	for _, c := range classes {
		t.add(naming.GlobalNameFor(c), c)
	}
	return t
}

func (t *ExportTable) add(global string, c *decls.ClassDecl) {
	idx := len(t.Entries)
	t.Entries = append(t.Entries, ExportEntry{GlobalName: global, Class: c, Ref: t.reference(global)})
	t.byName[global] = idx
	if c != nil {
		t.byClass[c.ID] = idx
	}
}

func (t *ExportTable) reference(global string) jsast.Expr {
	return jsast.QualifiedIdent(global, jsast.IdentRef(t.DeclObject))
}

// Len returns the number of entries.
func (t *ExportTable) Len() int { return len(t.Entries) }

// Lookup finds an entry by global name.
func (t *ExportTable) Lookup(global string) (ExportEntry, bool) {
	idx, ok := t.byName[global]
	if !ok {
		return ExportEntry{}, false
	}
	return t.Entries[idx], true
}

// Find finds the entry of decl.
func (t *ExportTable) Find(decl *decls.ClassDecl) (ExportEntry, bool) {
	if decl == nil {
		return ExportEntry{}, false
	}
	idx, ok := t.byClass[decl.ID]
	if !ok {
		return ExportEntry{}, false
	}
	return t.Entries[idx], true
}

// Reference returns a fresh reference expression for entry, safe to embed
// in another tree.
func (t *ExportTable) Reference(entry ExportEntry) jsast.Expr {
	return t.reference(entry.GlobalName)
}

// Object returns the namespace object literal {G: declObject.G, ...}.
func (t *ExportTable) Object() *jsast.ObjectLit {
	props := make([]jsast.Property, 0, len(t.Entries))
	for _, e := range t.Entries {
		props = append(props, jsast.Property{Key: e.GlobalName, Value: t.reference(e.GlobalName)})
	}
	return &jsast.ObjectLit{Props: props}
}

// ExportSource gives access to the export tables of other namespaces.
type ExportSource interface {
	ExportsFor(namespace string) (*ExportTable, error)
}

// Registry collects the export tables of finished units. Units lowered
// concurrently register into and read from the same Registry.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*ExportTable
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*ExportTable)}
}

// Register publishes a finished unit. A namespace can be registered once.
func (r *Registry) Register(t *ExportTable) error {
	if t == nil {
		return fmt.Errorf("registry: nil export table")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tables[t.Namespace]; dup {
		return fmt.Errorf("registry: namespace %q registered twice", t.Namespace)
	}
	r.tables[t.Namespace] = t
	return nil
}

// ExportsFor returns the table of namespace or *NotReadyError.
func (r *Registry) ExportsFor(namespace string) (*ExportTable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[namespace]
	if !ok {
		return nil, &NotReadyError{Namespace: namespace}
	}
	return t, nil
}

// Namespaces returns the registered namespaces, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.tables))
	for ns := range r.tables {
		out = append(out, ns)
	}
	slices.Sort(out)
	return out
}
