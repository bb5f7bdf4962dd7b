package project

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// Format is the encoding of a unit manifest.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// unitDoc is the TOML shape of a unit:
//
//	namespace = "shapes"
//	imports = ["core"]
//	[[class]]
//	name = "Circle"
//	supers = ["Shape"]
//	fields = ["radius", "center: core.Point"]
type unitDoc struct {
	Namespace string     `toml:"namespace"`
	Imports   []string   `toml:"imports"`
	Classes   []classDoc `toml:"class"`
}

type classDoc struct {
	Name    string   `toml:"name"`
	Kind    string   `toml:"kind"`
	Supers  []string `toml:"supers"`
	Fields  []string `toml:"fields"`
	Methods []string `toml:"methods"`
}

// LoadUnit reads a unit manifest from disk into fs and decodes it.
func LoadUnit(fs *source.FileSet, path string, r diag.Reporter) (*UnitMeta, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	meta, ok := DecodeUnit(fs, id, r)
	if !ok {
		return meta, fmt.Errorf("%s: invalid unit manifest", path)
	}
	return meta, nil
}

// DecodeUnit decodes a file already present in fs. Problems are reported to
// r; ok is false when any of them is an error. meta is nil only when the
// file could not be decoded at all.
func DecodeUnit(fs *source.FileSet, id source.FileID, r diag.Reporter) (meta *UnitMeta, ok bool) {
	f := fs.Get(id)
	if f == nil {
		return nil, false
	}
	d := decoder{fs: fs, file: f, r: r, ok: true}
	switch FormatOf(f.Path) {
	case FormatTOML:
		meta = d.decodeTOML()
	case FormatYAML:
		meta = d.decodeYAML()
	default:
		d.errorf(diag.IODecodeManifest, source.Span{File: id}, "%s: unsupported manifest extension (want .toml, .yaml or .yml)", f.Path)
		return nil, false
	}
	if meta == nil {
		return nil, false
	}
	meta.Path = f.Path
	meta.File = id
	meta.ContentHash = Digest(f.Hash)
	d.validate(meta)
	return meta, d.ok
}

type decoder struct {
	fs   *source.FileSet
	file *source.File
	r    diag.Reporter
	ok   bool
}

func (d *decoder) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	d.ok = false
	diag.ReportError(d.r, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (d *decoder) whole() source.Span {
	return source.Span{File: d.file.ID, Start: 0, End: offset(len(d.file.Content))}
}

func (d *decoder) decodeTOML() *UnitMeta {
	var doc unitDoc
	md, err := toml.Decode(string(d.file.Content), &doc)
	if err != nil {
		sp := d.whole()
		var perr toml.ParseError
		if errors.As(err, &perr) && perr.Position.Len > 0 {
			sp = d.byteSpan(perr.Position.Start, perr.Position.Len)
		}
		d.errorf(diag.IODecodeManifest, sp, "%s: failed to parse TOML: %v", d.file.Path, err)
		return nil
	}
	for _, key := range md.Undecoded() {
		diag.ReportWarning(d.r, diag.IODecodeManifest, d.whole(),
			fmt.Sprintf("%s: unknown key %q", d.file.Path, key.String())).Emit()
	}
	if !md.IsDefined("namespace") {
		d.errorf(diag.IODecodeManifest, d.whole(), "%s: missing namespace", d.file.Path)
		return nil
	}

	// TOML decoding carries no positions; names are located in the text in
	// document order instead.
	loc := locator{content: d.file.Content, file: d.file.ID}
	meta := &UnitMeta{Namespace: doc.Namespace, Span: loc.find(doc.Namespace)}
	for _, imp := range doc.Imports {
		meta.Imports = append(meta.Imports, ImportMeta{Path: imp, Span: loc.find(imp)})
	}
	for _, c := range doc.Classes {
		cm := ClassMeta{Name: c.Name, Kind: c.Kind, Span: loc.find(c.Name)}
		if c.Kind != "" {
			cm.KindSpan = loc.find(c.Kind)
		}
		for _, s := range c.Supers {
			cm.Supers = append(cm.Supers, NameMeta{Name: s, Span: loc.find(s)})
		}
		for _, f := range c.Fields {
			name, typ := splitField(f)
			cm.Fields = append(cm.Fields, FieldMeta{Name: name, Type: typ, Span: loc.find(f)})
		}
		for _, m := range c.Methods {
			cm.Methods = append(cm.Methods, NameMeta{Name: m, Span: loc.find(m)})
		}
		meta.Classes = append(meta.Classes, cm)
	}
	return meta
}

func (d *decoder) byteSpan(start, length int) source.Span {
	size := len(d.file.Content)
	start = min(max(start, 0), size)
	end := min(start+max(length, 0), size)
	return source.Span{File: d.file.ID, Start: offset(start), End: offset(end)}
}

// locator finds successive occurrences of quoted values in a document.
type locator struct {
	content []byte
	file    source.FileID
	pos     int
}

func (l *locator) find(value string) source.Span {
	if value == "" {
		return source.Span{File: l.file}
	}
	for _, needle := range [][]byte{[]byte(`"` + value + `"`), []byte(`'` + value + `'`)} {
		if idx := bytes.Index(l.content[l.pos:], needle); idx >= 0 {
			start := l.pos + idx + 1
			l.pos = start + len(value)
			return source.Span{File: l.file, Start: offset(start), End: offset(l.pos)}
		}
	}
	return source.Span{File: l.file}
}

func (d *decoder) decodeYAML() *UnitMeta {
	var root yaml.Node
	if err := yaml.Unmarshal(d.file.Content, &root); err != nil {
		d.errorf(diag.IODecodeManifest, d.whole(), "%s: failed to parse YAML: %v", d.file.Path, err)
		return nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		d.errorf(diag.IODecodeManifest, d.whole(), "%s: expected a mapping at the top level", d.file.Path)
		return nil
	}
	meta := &UnitMeta{}
	haveNamespace := false
	doc := root.Content[0]
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "namespace":
			meta.Namespace, meta.Span = value.Value, d.nodeSpan(value)
			haveNamespace = true
		case "imports":
			for _, item := range d.scalars(value) {
				meta.Imports = append(meta.Imports, ImportMeta{Path: item.Name, Span: item.Span})
			}
		case "classes", "class":
			if value.Kind != yaml.SequenceNode {
				d.errorf(diag.IODecodeManifest, d.nodeSpan(value), "%s: %s must be a list", d.file.Path, key.Value)
				continue
			}
			for _, item := range value.Content {
				if cm, ok := d.yamlClass(item); ok {
					meta.Classes = append(meta.Classes, cm)
				}
			}
		default:
			diag.ReportWarning(d.r, diag.IODecodeManifest, d.nodeSpan(key),
				fmt.Sprintf("%s: unknown key %q", d.file.Path, key.Value)).Emit()
		}
	}
	if !haveNamespace {
		d.errorf(diag.IODecodeManifest, d.whole(), "%s: missing namespace", d.file.Path)
		return nil
	}
	return meta
}

func (d *decoder) yamlClass(node *yaml.Node) (ClassMeta, bool) {
	if node.Kind != yaml.MappingNode {
		d.errorf(diag.IODecodeManifest, d.nodeSpan(node), "%s: class entry must be a mapping", d.file.Path)
		return ClassMeta{}, false
	}
	cm := ClassMeta{Span: d.nodeSpan(node)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			cm.Name, cm.Span = value.Value, d.nodeSpan(value)
		case "kind":
			cm.Kind, cm.KindSpan = value.Value, d.nodeSpan(value)
		case "supers":
			cm.Supers = d.scalars(value)
		case "fields":
			for _, item := range d.scalars(value) {
				name, typ := splitField(item.Name)
				cm.Fields = append(cm.Fields, FieldMeta{Name: name, Type: typ, Span: item.Span})
			}
		case "methods":
			cm.Methods = d.scalars(value)
		default:
			diag.ReportWarning(d.r, diag.IODecodeManifest, d.nodeSpan(key),
				fmt.Sprintf("%s: unknown class key %q", d.file.Path, key.Value)).Emit()
		}
	}
	return cm, true
}

// scalars accepts a sequence of scalars or a single scalar.
func (d *decoder) scalars(node *yaml.Node) []NameMeta {
	switch node.Kind {
	case yaml.ScalarNode:
		return []NameMeta{{Name: node.Value, Span: d.nodeSpan(node)}}
	case yaml.SequenceNode:
		out := make([]NameMeta, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				d.errorf(diag.IODecodeManifest, d.nodeSpan(item), "%s: expected a string", d.file.Path)
				continue
			}
			out = append(out, NameMeta{Name: item.Value, Span: d.nodeSpan(item)})
		}
		return out
	default:
		d.errorf(diag.IODecodeManifest, d.nodeSpan(node), "%s: expected a string or a list of strings", d.file.Path)
		return nil
	}
}

func (d *decoder) nodeSpan(n *yaml.Node) source.Span {
	width := len(n.Value)
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		width += 2
	}
	return d.fs.SpanAt(d.file.ID, n.Line, n.Column, width)
}

func offset(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("manifest offset overflow: %w", err))
	}
	return v
}

// splitField parses "name" or "name: Type".
func splitField(s string) (name, typ string) {
	name, typ, _ = strings.Cut(s, ":")
	return strings.TrimSpace(name), strings.TrimSpace(typ)
}

func (d *decoder) validate(meta *UnitMeta) {
	ns, err := NormalizeNamespace(meta.Namespace)
	if err != nil {
		d.errorf(diag.ProjInvalidName, meta.Span, "%s: namespace %q: %v", d.file.Path, meta.Namespace, err)
	} else {
		meta.Namespace = ns
	}
	for i, imp := range meta.Imports {
		path, err := NormalizeNamespace(imp.Path)
		if err != nil {
			d.errorf(diag.ProjInvalidName, imp.Span, "import %q: %v", imp.Path, err)
			continue
		}
		meta.Imports[i].Path = path
	}
	for _, c := range meta.Classes {
		if !IsValidIdent(c.Name) {
			d.errorf(diag.ProjInvalidName, c.Span, "invalid class name %q", c.Name)
		}
		for _, f := range c.Fields {
			if !IsValidIdent(f.Name) {
				d.errorf(diag.ProjInvalidName, f.Span, "class %s: invalid field name %q", c.Name, f.Name)
			}
		}
		for _, m := range c.Methods {
			if !IsValidIdent(m.Name) {
				d.errorf(diag.ProjInvalidName, m.Span, "class %s: invalid method name %q", c.Name, m.Name)
			}
		}
	}
}
