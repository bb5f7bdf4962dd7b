package jsast

import (
	"strconv"
	"sync/atomic"
)

var nameSerial atomic.Uint64

// Name is a binding declared in a Scope. Names are compared by identity:
// two temporaries may print the same identifier in sibling scopes but are
// still distinct names.
type Name struct {
	ident  string
	scope  *Scope
	serial uint64
}

// Ident returns the identifier printed for the name.
func (n *Name) Ident() string { return n.ident }

// Scope returns the scope that declared the name.
func (n *Name) Scope() *Scope { return n.scope }

// Serial is unique per process; it never repeats for another Name.
func (n *Name) Serial() uint64 { return n.serial }

// MakeRef builds an unqualified reference to the name.
func (n *Name) MakeRef() *NameRef { return &NameRef{Name: n} }

func (n *Name) String() string { return n.ident + "#" + strconv.FormatUint(n.serial, 10) }

// Scope is a lexical scope of the generated program. Identifier collisions
// are resolved against the whole parent chain by appending a counter, the
// same way esbuild's number renamer does.
type Scope struct {
	parent      *Scope
	description string
	names       map[string]*Name
	counts      map[string]uint32
	temps       uint32
}

// NewRootScope creates a scope without parent.
func NewRootScope(description string) *Scope {
	return NewScope(nil, description)
}

// NewScope creates a child scope of parent.
func NewScope(parent *Scope, description string) *Scope {
	return &Scope{
		parent:      parent,
		description: description,
		names:       make(map[string]*Name),
		counts:      make(map[string]uint32),
	}
}

func (s *Scope) Parent() *Scope { return s.parent }

func (s *Scope) Description() string { return s.description }

// Reserve marks ident as taken in this scope without creating a usable name
// (runtime globals such as $lumen).
func (s *Scope) Reserve(idents ...string) {
	for _, ident := range idents {
		if _, ok := s.counts[ident]; !ok {
			s.counts[ident] = 1
		}
	}
}

// DeclareName returns the name bound to ident in this scope, declaring it
// when absent. It does not rename on collisions with outer scopes.
func (s *Scope) DeclareName(ident string) *Name {
	if n, ok := s.names[ident]; ok {
		return n
	}
	return s.bind(ident)
}

// DeclareFreshName declares a new name based on base that does not collide
// with anything visible from this scope.
func (s *Scope) DeclareFreshName(base string) *Name {
	return s.bind(s.findUnusedName(base))
}

// DeclareTemporary declares a fresh tmp$N name.
func (s *Scope) DeclareTemporary() *Name {
	for {
		ident := "tmp$" + strconv.FormatUint(uint64(s.temps), 10)
		s.temps++
		if s.lookupIdent(ident) == nil && !s.reserved(ident) {
			return s.bind(ident)
		}
	}
}

// FindName looks ident up through the scope chain.
func (s *Scope) FindName(ident string) *Name {
	return s.lookupIdent(ident)
}

// OwnNames returns the names declared directly in this scope.
func (s *Scope) OwnNames() int { return len(s.names) }

func (s *Scope) bind(ident string) *Name {
	n := &Name{ident: ident, scope: s, serial: nameSerial.Add(1)}
	s.names[ident] = n
	if _, ok := s.counts[ident]; !ok {
		s.counts[ident] = 1
	}
	return n
}

func (s *Scope) lookupIdent(ident string) *Name {
	for scope := s; scope != nil; scope = scope.parent {
		if n, ok := scope.names[ident]; ok {
			return n
		}
	}
	return nil
}

func (s *Scope) reserved(ident string) bool {
	for scope := s; scope != nil; scope = scope.parent {
		if _, ok := scope.counts[ident]; ok {
			return true
		}
	}
	return false
}

func (s *Scope) findUnusedName(name string) string {
	if !s.reserved(name) {
		return name
	}
	// start from the last collision count of this scope to avoid O(n^2)
	tries := s.counts[name]
	if tries == 0 {
		tries = 1
	}
	prefix := name
	for {
		tries++
		candidate := prefix + strconv.FormatUint(uint64(tries), 10)
		if !s.reserved(candidate) {
			s.counts[prefix] = tries
			return candidate
		}
	}
}
