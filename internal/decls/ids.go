package decls

// ClassID identifies a class declaration inside a Program arena.
type ClassID uint32

const (
	// NoClassID marks the absence of a class reference.
	NoClassID ClassID = 0
)

// IsValid reports whether the class ID refers to an allocated declaration.
func (id ClassID) IsValid() bool { return id != NoClassID }
