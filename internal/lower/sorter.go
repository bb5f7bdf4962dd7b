package lower

import "lumen/internal/decls"

// SupertypeSource yields the ordered declared supertypes of a class.
type SupertypeSource interface {
	SupertypesOf(decl *decls.ClassDecl) []decls.TypeRef
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	done
)

// SortByInheritance orders in so that every class follows all of its
// supertypes that are also in the input. Roots are visited in input order
// and supertypes in declared order, so the same input always gives the same
// output. Supertypes outside the input are ignored.
func SortByInheritance(in []*decls.ClassDecl, supers SupertypeSource) ([]*decls.ClassDecl, error) {
	s := sorter{
		byID:  make(map[decls.ClassID]*decls.ClassDecl, len(in)),
		state: make(map[decls.ClassID]visitState, len(in)),
		out:   make([]*decls.ClassDecl, 0, len(in)),
		src:   supers,
	}
	for _, decl := range in {
		if decl == nil {
			continue
		}
		if _, dup := s.byID[decl.ID]; !dup {
			s.byID[decl.ID] = decl
		}
	}
	for _, decl := range in {
		if decl == nil {
			continue
		}
		if err := s.visit(decl); err != nil {
			return nil, err
		}
	}
	return s.out, nil
}

type sorter struct {
	byID  map[decls.ClassID]*decls.ClassDecl
	state map[decls.ClassID]visitState
	path  []*decls.ClassDecl
	out   []*decls.ClassDecl
	src   SupertypeSource
}

func (s *sorter) visit(decl *decls.ClassDecl) error {
	switch s.state[decl.ID] {
	case done:
		return nil
	case visiting:
		return s.cycleAt(decl)
	}
	s.state[decl.ID] = visiting
	s.path = append(s.path, decl)
	for _, ref := range s.src.SupertypesOf(decl) {
		if ref.IsExternal() {
			continue
		}
		super, inSet := s.byID[ref.Class]
		if !inSet {
			continue
		}
		if err := s.visit(super); err != nil {
			return err
		}
	}
	s.path = s.path[:len(s.path)-1]
	s.state[decl.ID] = done
	s.out = append(s.out, decl)
	return nil
}

// cycleAt cuts the current DFS path at the first occurrence of decl.
func (s *sorter) cycleAt(decl *decls.ClassDecl) error {
	start := len(s.path) - 1
	for start > 0 && s.path[start].ID != decl.ID {
		start--
	}
	cycle := make([]*decls.ClassDecl, len(s.path)-start)
	copy(cycle, s.path[start:])
	return &CycleError{Classes: cycle}
}
