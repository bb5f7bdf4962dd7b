package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// ввод-вывод
	IOLoadFileError   Code = 4001
	IODecodeManifest  Code = 4002
	IOWriteOutput     Code = 4003
	IOCacheUnreadable Code = 4004

	// проектные
	ProjInfo             Code = 5000
	ProjDuplicateModule  Code = 5001
	ProjMissingModule    Code = 5002
	ProjSelfImport       Code = 5003
	ProjImportCycle      Code = 5004
	ProjDependencyFailed Code = 5005
	ProjDuplicateClass   Code = 5006
	ProjUnknownSuper     Code = 5007
	ProjInvalidName      Code = 5008
	ProjInvalidKind      Code = 5009

	// понижение классов
	LowerInfo             Code = 6000
	LowerClassCycle       Code = 6001
	LowerAliasLifecycle   Code = 6002
	LowerNotReady         Code = 6003
	LowerDependencyFailed Code = 6004
	LowerBodyFailed       Code = 6005

	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	IOLoadFileError:       "I/O load file error",
	IODecodeManifest:      "Malformed unit manifest",
	IOWriteOutput:         "Cannot write output",
	IOCacheUnreadable:     "Artifact cache entry is unreadable",
	ProjInfo:              "Project information",
	ProjDuplicateModule:   "Duplicate namespace definition",
	ProjMissingModule:     "Missing namespace",
	ProjSelfImport:        "Namespace imports itself",
	ProjImportCycle:       "Import cycle detected",
	ProjDependencyFailed:  "Dependency namespace has errors",
	ProjDuplicateClass:    "Duplicate class declaration",
	ProjUnknownSuper:      "Unknown supertype",
	ProjInvalidName:       "Invalid declaration name",
	ProjInvalidKind:       "Invalid class kind",
	LowerInfo:             "Lowering information",
	LowerClassCycle:       "Inheritance cycle among class declarations",
	LowerAliasLifecycle:   "Class alias used outside its lifetime",
	LowerNotReady:         "Class declarations requested before they were generated",
	LowerDependencyFailed: "Imported namespace failed to lower",
	LowerBodyFailed:       "Class body lowering failed",
	ObsInfo:               "Observability information",
	ObsTimings:            "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
