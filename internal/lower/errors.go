package lower

import (
	"errors"
	"fmt"
	"strings"

	"lumen/internal/decls"
	"lumen/internal/diag"
	"lumen/internal/source"
)

// CycleError reports an inheritance cycle among the classes of one batch.
// Classes are listed in cycle order starting at the first class reached.
type CycleError struct {
	Classes []*decls.ClassDecl
}

func (e *CycleError) Error() string {
	if len(e.Classes) == 0 {
		return "inheritance cycle"
	}
	names := make([]string, 0, len(e.Classes)+1)
	for _, c := range e.Classes {
		names = append(names, c.QualifiedName())
	}
	names = append(names, e.Classes[0].QualifiedName())
	return "inheritance cycle: " + strings.Join(names, " -> ")
}

// AliasLifecycleError is a contract violation of AliasScope: an alias was
// assigned twice, used after teardown, or used before it was assigned.
type AliasLifecycleError struct {
	Op     string
	Class  *decls.ClassDecl
	Reason string
}

func (e *AliasLifecycleError) Error() string {
	if e.Class == nil {
		return fmt.Sprintf("alias %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("alias %s for %s: %s", e.Op, e.Class.QualifiedName(), e.Reason)
}

// NotReadyError means the declarations of Namespace were requested before
// its initializer was built.
type NotReadyError struct {
	Namespace string
	Class     *decls.ClassDecl
}

func (e *NotReadyError) Error() string {
	ns := e.Namespace
	if ns == "" {
		ns = "<root>"
	}
	if e.Class != nil {
		return fmt.Sprintf("declarations of namespace %s are not ready (needed for %s)", ns, e.Class.QualifiedName())
	}
	return fmt.Sprintf("declarations of namespace %s are not ready", ns)
}

// ReportError converts a lowering error into a diagnostic. at is used as the
// primary span when the error carries no class of its own. It returns false
// for a nil error.
func ReportError(r diag.Reporter, err error, at source.Span) bool {
	if err == nil {
		return false
	}
	var (
		cycle    *CycleError
		lifetime *AliasLifecycleError
		notReady *NotReadyError
	)
	switch {
	case errors.As(err, &cycle):
		primary := at
		if len(cycle.Classes) > 0 {
			primary = cycle.Classes[0].Span
		}
		b := diag.ReportError(r, diag.LowerClassCycle, primary, cycle.Error())
		for i, c := range cycle.Classes {
			next := cycle.Classes[(i+1)%len(cycle.Classes)]
			b.WithNote(c.Span, fmt.Sprintf("%s inherits from %s", c.QualifiedName(), next.QualifiedName()))
		}
		b.Emit()
	case errors.As(err, &lifetime):
		primary := at
		if lifetime.Class != nil {
			primary = lifetime.Class.Span
		}
		diag.ReportError(r, diag.LowerAliasLifecycle, primary, err.Error()).Emit()
	case errors.As(err, &notReady):
		primary := at
		if notReady.Class != nil {
			primary = notReady.Class.Span
		}
		diag.ReportError(r, diag.LowerNotReady, primary, err.Error()).
			WithNote(at, "namespace "+notReady.Namespace+" must be lowered first").
			Emit()
	default:
		diag.ReportError(r, diag.LowerBodyFailed, at, err.Error()).Emit()
	}
	return true
}
