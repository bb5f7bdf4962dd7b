package driver

import (
	"fmt"
	"strings"

	"lumen/internal/lower"
	"lumen/internal/project"
	"lumen/internal/project/dag"
)

// ComputeUnitHashes вычисляет UnitHash в порядке топосортировки: зависимости
// получают хеш раньше импортёров. Для циклического графа юниты цикла
// остаются с нулевым хешем.
func ComputeUnitHashes(g dag.Graph, slots []dag.UnitSlot, topo *dag.Topo) {
	if topo == nil {
		return
	}
	for _, id := range topo.Order {
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
		for _, to := range g.Edges[int(id)] {
			if !g.Present[int(to)] {
				continue
			}
			deps = append(deps, slots[int(to)].Meta.UnitHash)
		}
		slot.Meta.UnitHash = project.Combine(slot.Meta.ContentHash, deps...)
	}
}

// artifactKey mixes everything that changes the printed output of a unit
// into its UnitHash: lowering options, indentation and the identifiers of the
// unit and of every namespace it imports.
func artifactKey(meta *project.UnitMeta, opts lower.Options, indent int, idents []string) project.Digest {
	salt := fmt.Sprintf("schema=%d;decls=%s;freeze=%t;runtime=%s;indent=%d;idents=%s",
		diskCacheSchemaVersion, opts.DeclarationsName, opts.Freeze, opts.Runtime, indent, strings.Join(idents, ","))
	return meta.UnitHash.WithSalt(salt)
}
