// Package lower turns the class declarations of one namespace into a single
// initializer statement and an export table.
//
// Порядок работы для одного юнита:
//
//	SortByInheritance -> Emitter.Emit (AliasScope) -> BuildInitializer -> ExportTable
//
// Translator wires these steps together. Every unit owns its Translator and
// AliasScope; only the Registry is shared between concurrently lowered units.
package lower
