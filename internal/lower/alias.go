package lower

import (
	"sync/atomic"

	"lumen/internal/decls"
	"lumen/internal/jsast"
)

var aliasSerial atomic.Uint64

// LocalAlias is the temporary name of one class inside one initializer.
// Serial is unique for the whole process, so two aliases are never equal
// even when they print the same identifier in different units.
type LocalAlias struct {
	Name   *jsast.Name
	Serial uint64
}

// IsZero reports whether the alias is unset.
func (a LocalAlias) IsZero() bool { return a.Name == nil }

// Ref returns a reference expression to the alias.
func (a LocalAlias) Ref() *jsast.NameRef { return a.Name.MakeRef() }

// AliasScope maps classes of one batch to their local aliases.
// It is created per batch and must be torn down exactly once; a new batch
// needs a new scope. Not safe for concurrent use.
type AliasScope struct {
	scope      *jsast.Scope
	live       map[decls.ClassID]LocalAlias
	retired    map[decls.ClassID]struct{}
	inProgress map[decls.ClassID]struct{}
	tornDown   bool
}

// NewAliasScope creates an alias scope whose names are declared in scope,
// normally the initializer's function scope.
func NewAliasScope(scope *jsast.Scope) *AliasScope {
	return &AliasScope{
		scope:      scope,
		live:       make(map[decls.ClassID]LocalAlias),
		retired:    make(map[decls.ClassID]struct{}),
		inProgress: make(map[decls.ClassID]struct{}),
	}
}

// Scope returns the lexical scope aliases are declared in.
func (s *AliasScope) Scope() *jsast.Scope { return s.scope }

// Assign declares a fresh alias for decl.
func (s *AliasScope) Assign(decl *decls.ClassDecl) (LocalAlias, error) {
	if s.tornDown {
		return LocalAlias{}, &AliasLifecycleError{Op: "assign", Class: decl, Reason: "scope was torn down"}
	}
	if _, ok := s.live[decl.ID]; ok {
		return LocalAlias{}, &AliasLifecycleError{Op: "assign", Class: decl, Reason: "alias already assigned in this batch"}
	}
	alias := LocalAlias{Name: s.scope.DeclareTemporary(), Serial: aliasSerial.Add(1)}
	s.live[decl.ID] = alias
	return alias, nil
}

// Resolve looks decl up without side effects. After Teardown it always
// reports false.
func (s *AliasScope) Resolve(decl *decls.ClassDecl) (LocalAlias, bool) {
	if s.tornDown || decl == nil {
		return LocalAlias{}, false
	}
	alias, ok := s.live[decl.ID]
	return alias, ok
}

// MustResolve is Resolve for callers that consume the alias: a missing or
// retired alias is an error.
func (s *AliasScope) MustResolve(decl *decls.ClassDecl) (LocalAlias, error) {
	if alias, ok := s.Resolve(decl); ok {
		return alias, nil
	}
	if decl != nil {
		if _, retired := s.retired[decl.ID]; retired {
			return LocalAlias{}, &AliasLifecycleError{Op: "resolve", Class: decl, Reason: "alias was removed when its batch finished"}
		}
	}
	return LocalAlias{}, &AliasLifecycleError{Op: "resolve", Class: decl, Reason: "no alias assigned yet"}
}

// Teardown drops every alias of the batch.
func (s *AliasScope) Teardown() error {
	if s.tornDown {
		return &AliasLifecycleError{Op: "teardown", Reason: "scope was already torn down"}
	}
	for id := range s.live {
		s.retired[id] = struct{}{}
	}
	clear(s.live)
	clear(s.inProgress)
	s.tornDown = true
	return nil
}

// TornDown reports whether Teardown ran.
func (s *AliasScope) TornDown() bool { return s.tornDown }

// Len returns the number of live aliases.
func (s *AliasScope) Len() int { return len(s.live) }

// MarkInProgress flags decl as being constructed; eager references to it
// are self-references.
func (s *AliasScope) MarkInProgress(decl *decls.ClassDecl) {
	s.inProgress[decl.ID] = struct{}{}
}

// ClearInProgress removes the marker set by MarkInProgress.
func (s *AliasScope) ClearInProgress(decl *decls.ClassDecl) {
	delete(s.inProgress, decl.ID)
}

// InProgress reports whether decl is marked.
func (s *AliasScope) InProgress(decl *decls.ClassDecl) bool {
	_, ok := s.inProgress[decl.ID]
	return ok
}
