package diag

import "lumen/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewInfo builds a span-less informational diagnostic (timings, cache notes).
func NewInfo(code Code, msg string) Diagnostic {
	return New(SevInfo, code, source.Span{}, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// IsError reports whether d stops its unit from lowering.
func (d *Diagnostic) IsError() bool { return d.Severity >= SevError }
