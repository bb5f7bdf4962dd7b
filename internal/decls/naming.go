package decls

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// reservedWords are JavaScript reserved words and globals that generated
// identifiers must not shadow.
var reservedWords = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"yield": {}, "let": {}, "static": {}, "implements": {}, "interface": {},
	"package": {}, "private": {}, "protected": {}, "public": {}, "await": {},
	"arguments": {}, "eval": {}, "undefined": {}, "NaN": {}, "Infinity": {},
	"Object": {}, "$lumen": {},
}

// IsReserved reports whether ident may not be used as a generated name.
func IsReserved(ident string) bool {
	_, ok := reservedWords[ident]
	return ok
}

// Sanitize turns an arbitrary declaration name into a JavaScript identifier:
// NFC-normalized, non-identifier runes replaced by '_', a leading digit
// prefixed with '_', reserved words suffixed with '$'.
func Sanitize(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '$' || r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	ident := b.String()
	if IsReserved(ident) {
		ident += "$"
	}
	return ident
}

// Mangler assigns stable global names to classes and namespaces. Names are
// computed once in NewMangler so the result is read-only and safe to share
// between concurrently lowered units.
type Mangler struct {
	classes    map[ClassID]string
	namespaces map[string]string
}

var pathSeparators = strings.NewReplacer("/", "$", ".", "$", "-", "_")

// NewMangler computes global names for every class of a linked program.
// Within one namespace colliding sanitized names get numeric suffixes in
// declaration order; namespace identifiers are unique program-wide.
func NewMangler(p *Program) *Mangler {
	m := &Mangler{
		classes:    make(map[ClassID]string, p.Len()),
		namespaces: make(map[string]string, len(p.order)),
	}
	usedNS := make(map[string]uint32, len(p.order))
	for _, ns := range p.Namespaces() {
		m.namespaces[ns.Path] = uniqueName(usedNS, Sanitize(pathSeparators.Replace(ns.Path)))
		used := make(map[string]uint32, len(ns.Classes))
		for _, id := range ns.Classes {
			m.classes[id] = uniqueName(used, Sanitize(p.Class(id).Name))
		}
	}
	return m
}

func uniqueName(used map[string]uint32, name string) string {
	count, taken := used[name]
	if !taken {
		used[name] = 1
		return name
	}
	for {
		count++
		candidate := name + strconv.FormatUint(uint64(count), 10)
		if _, clash := used[candidate]; !clash {
			used[name] = count
			used[candidate] = 1
			return candidate
		}
	}
}

// GlobalNameFor returns the global name of decl.
func (m *Mangler) GlobalNameFor(decl *ClassDecl) string {
	if decl == nil {
		return ""
	}
	if name, ok := m.classes[decl.ID]; ok {
		return name
	}
	return Sanitize(decl.Name)
}

// NamespaceIdent returns the identifier used for a namespace object.
func (m *Mangler) NamespaceIdent(path string) string {
	if name, ok := m.namespaces[path]; ok {
		return name
	}
	return Sanitize(pathSeparators.Replace(path))
}
