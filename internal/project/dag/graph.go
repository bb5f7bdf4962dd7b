package dag

import (
	"fmt"
	"slices"
	"strings"

	"lumen/internal/diag"
	"lumen/internal/project"
	"lumen/internal/source"
)

type Graph struct {
	Edges      [][]UnitID // Edges[from] = импорты from (отсортированы)
	Dependents [][]UnitID // Dependents[to] = кто импортирует to
	Indeg      []int      // число присутствующих зависимостей (для Kahn)
	Present    []bool     // юнит реально загружен (а не только импортируется)
}

type UnitNode struct {
	Meta     *project.UnitMeta
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

type UnitSlot struct {
	Meta     *project.UnitMeta
	Reporter diag.Reporter
	Present  bool
	Broken   bool
	FirstErr *diag.Diagnostic
}

func BuildGraph(idx UnitIndex, nodes []UnitNode) (Graph, []UnitSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:      make([][]UnitID, nodeCount),
		Dependents: make([][]UnitID, nodeCount),
		Indeg:      make([]int, nodeCount),
		Present:    make([]bool, nodeCount),
	}
	slots := make([]UnitSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta = &project.UnitMeta{Namespace: name}
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta == nil || meta.Namespace == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Namespace]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			if node.Reporter != nil {
				b := diag.ReportError(node.Reporter, diag.ProjDuplicateModule, meta.Span,
					fmt.Sprintf("duplicate namespace %q", meta.Namespace))
				if slot.Meta.Span != (source.Span{}) {
					b.WithNote(slot.Meta.Span, fmt.Sprintf("previous declaration of %q", slot.Meta.Namespace))
				}
				b.Emit()
			}
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[UnitID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			if dep.Path == "" {
				continue
			}
			toID := idx.NameToID[dep.Path]
			if toUnitID(from) == toID {
				if slot.Reporter != nil {
					diag.ReportError(slot.Reporter, diag.ProjSelfImport, dep.Span,
						fmt.Sprintf("namespace %q imports itself", slot.Meta.Namespace)).Emit()
				}
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if !g.Present[int(toID)] {
				if slot.Reporter != nil {
					diag.ReportError(slot.Reporter, diag.ProjMissingModule, dep.Span,
						fmt.Sprintf("namespace %q imports missing namespace %q", slot.Meta.Namespace, idx.IDToName[int(toID)])).Emit()
				}
				continue
			}
			g.Indeg[from]++
			g.Dependents[int(toID)] = append(g.Dependents[int(toID)], toUnitID(from))
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g, slots
}

func ReportCycles(idx UnitIndex, slots []UnitSlot, topo *Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		slot.Broken = true
		if slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("namespace %q participates in an import cycle: %s", slot.Meta.Namespace, summary)
		diag.ReportError(slot.Reporter, diag.ProjImportCycle, slot.Meta.Span, msg).Emit()
	}
}

// ReportBrokenDeps reports every import of a broken unit. It does not
// propagate Broken; the pipeline does that wave by wave.
func ReportBrokenDeps(idx UnitIndex, slots []UnitSlot) {
	for i := range slots {
		slotFrom := &slots[i]
		if !slotFrom.Present || slotFrom.Reporter == nil || len(slotFrom.Meta.Imports) == 0 {
			continue
		}
		emitted := make(map[string]struct{}, len(slotFrom.Meta.Imports))
		for _, imp := range slotFrom.Meta.Imports {
			toID, ok := idx.NameToID[imp.Path]
			if !ok {
				continue
			}
			depSlot := slots[int(toID)]
			if !depSlot.Broken {
				continue
			}
			key := imp.Path + "|" + imp.Span.String()
			if _, seen := emitted[key]; seen {
				continue
			}
			emitted[key] = struct{}{}

			b := diag.ReportError(slotFrom.Reporter, diag.ProjDependencyFailed, imp.Span,
				fmt.Sprintf("dependency namespace %q has errors", imp.Path))
			if depSlot.FirstErr != nil {
				b.WithNote(depSlot.FirstErr.Primary, fmt.Sprintf("first error in dependency: %s", depSlot.FirstErr.Message))
			}
			b.Emit()
		}
	}
}
