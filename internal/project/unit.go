package project

import (
	"errors"
	"strings"
	"unicode"

	"lumen/internal/source"
)

type ImportMeta struct {
	Path string
	Span source.Span
}

// NameMeta is a name as written in a manifest, with its position.
type NameMeta struct {
	Name string
	Span source.Span
}

// FieldMeta is `name` or `name: Type` from a fields list.
type FieldMeta struct {
	Name string
	Type string
	Span source.Span
}

// ClassMeta is one [[class]] entry of a unit manifest.
type ClassMeta struct {
	Name     string
	Kind     string
	Span     source.Span
	KindSpan source.Span
	Supers   []NameMeta
	Fields   []FieldMeta
	Methods  []NameMeta
}

// UnitMeta describes one namespace loaded from a unit manifest.
type UnitMeta struct {
	Namespace   string // нормализованный путь: "app.ui"
	Path        string // путь к файлу манифеста
	File        source.FileID
	Span        source.Span  // место объявления namespace
	Imports     []ImportMeta // нормализованные пути импортов с их спанами
	Classes     []ClassMeta
	ContentHash Digest // хеш содержимого файла (из FileSet)
	UnitHash    Digest // агрегированный хеш с учётом зависимостей
}

// IsValidIdent reports whether name can be a namespace segment or a class
// name: a letter or '_' followed by letters, digits, '_' or '$'.
func IsValidIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && (r == '$' || unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// NormalizeNamespace приводит путь namespace к каноническому виду "a.b".
// '/' и '\' считаются разделителями наравне с '.'; пустые сегменты запрещены.
func NormalizeNamespace(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("empty namespace")
	}
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '/' || r == '\\'
	})
	separators := strings.Count(path, ".") + strings.Count(path, "/") + strings.Count(path, "\\")
	if len(segments) != separators+1 {
		return "", errors.New("invalid namespace: empty segment")
	}
	for _, seg := range segments {
		if !IsValidIdent(seg) {
			return "", errors.New("invalid namespace segment " + `"` + seg + `"`)
		}
	}
	return strings.Join(segments, "."), nil
}
