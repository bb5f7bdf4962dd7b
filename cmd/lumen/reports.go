package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"lumen/internal/decls"
	"lumen/internal/driver"
	"lumen/internal/jsprint"
)

type orderedClass struct {
	Name      string   `json:"name" yaml:"name"`
	Qualified string   `json:"qualified" yaml:"qualified"`
	Kind      string   `json:"kind" yaml:"kind"`
	Supers    []string `json:"supers,omitempty" yaml:"supers,omitempty"`
}

type unitOrder struct {
	Namespace string         `json:"namespace" yaml:"namespace"`
	File      string         `json:"file" yaml:"file"`
	Wave      int            `json:"wave" yaml:"wave"`
	Cached    bool           `json:"cached,omitempty" yaml:"cached,omitempty"`
	Classes   []orderedClass `json:"classes" yaml:"classes"`
}

type exportedClass struct {
	Global    string `json:"global" yaml:"global"`
	Qualified string `json:"qualified" yaml:"qualified"`
	Ref       string `json:"ref" yaml:"ref"`
}

type unitExports struct {
	Namespace  string          `json:"namespace" yaml:"namespace"`
	DeclObject string          `json:"decl_object" yaml:"decl_object"`
	Exports    []exportedClass `json:"exports" yaml:"exports"`
}

func superNames(prog *decls.Program, c *decls.ClassDecl) []string {
	supers := prog.SupertypesOf(c)
	if len(supers) == 0 {
		return nil
	}
	out := make([]string, 0, len(supers))
	for _, ref := range supers {
		if ref.IsExternal() {
			out = append(out, ref.External)
			continue
		}
		out = append(out, prog.Class(ref.Class).QualifiedName())
	}
	return out
}

// buildOrderReport lists the lowered units dependencies first, each with its
// classes in emission order.
func buildOrderReport(res *driver.LowerResult, baseDir string) []unitOrder {
	if res == nil {
		return nil
	}
	wave := make(map[string]int)
	for i, batch := range res.Batches {
		for _, ns := range batch {
			wave[ns] = i
		}
	}
	out := make([]unitOrder, 0, len(res.Order))
	for _, u := range res.Order {
		entry := unitOrder{
			Namespace: u.Namespace,
			File:      formatPathForOutput(baseDir, u.Path),
			Wave:      wave[u.Namespace],
			Cached:    u.Cached,
			Classes:   make([]orderedClass, 0, len(u.Order)),
		}
		for _, c := range u.Order {
			entry.Classes = append(entry.Classes, orderedClass{
				Name:      c.Name,
				Qualified: c.QualifiedName(),
				Kind:      c.Kind.String(),
				Supers:    superNames(res.Program, c),
			})
		}
		out = append(out, entry)
	}
	return out
}

// buildExportsReport lists the export table of every lowered unit.
func buildExportsReport(res *driver.LowerResult) []unitExports {
	if res == nil {
		return nil
	}
	out := make([]unitExports, 0, len(res.Order))
	for _, u := range res.Order {
		if u.Exports == nil {
			continue
		}
		entry := unitExports{
			Namespace:  u.Namespace,
			DeclObject: u.Exports.DeclObject,
			Exports:    make([]exportedClass, 0, u.Exports.Len()),
		}
		for _, e := range u.Exports.Entries {
			entry.Exports = append(entry.Exports, exportedClass{
				Global:    e.GlobalName,
				Qualified: e.Class.QualifiedName(),
				Ref:       jsprint.Expr(u.Exports.Reference(e), jsprint.Options{}),
			})
		}
		out = append(out, entry)
	}
	return out
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or yaml)", format)
	}
}

func renderOrderText(w io.Writer, units []unitOrder) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, u := range units {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		suffix := ""
		if u.Cached {
			suffix = " (cached)"
		}
		fmt.Fprintf(tw, "%s\t%s\twave %d%s\n", u.Namespace, u.File, u.Wave, suffix)
		for n, c := range u.Classes {
			supers := ""
			if len(c.Supers) > 0 {
				supers = "extends " + strings.Join(c.Supers, ", ")
			}
			fmt.Fprintf(tw, "  %d. %s\t%s\t%s\n", n+1, c.Name, c.Kind, supers)
		}
	}
	return tw.Flush()
}

func renderExportsText(w io.Writer, units []unitExports) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, u := range units {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\t%s\n", u.Namespace, u.DeclObject)
		for _, e := range u.Exports {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Global, e.Ref, e.Qualified)
		}
	}
	return tw.Flush()
}
