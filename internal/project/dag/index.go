package dag

import (
	"sort"

	"lumen/internal/project"
)

type UnitID uint32

type UnitIndex struct {
	NameToID map[string]UnitID
	IDToName []string
}

// собрать уникальные namespace (включая импортируемые), sort.Strings, раздать ID по порядку
func BuildIndex(metas []*project.UnitMeta) UnitIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Namespace != "" {
			uniq[meta.Namespace] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.Path == "" {
				continue
			}
			uniq[dep.Path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for path := range uniq {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	nameToID := make(map[string]UnitID, len(paths))
	for i, path := range paths {
		nameToID[path] = toUnitID(i)
	}

	return UnitIndex{
		NameToID: nameToID,
		IDToName: paths,
	}
}
