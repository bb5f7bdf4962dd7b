package diag

import "lumen/internal/source"

// FileRouter sends each diagnostic to the reporter registered for the file
// of its primary span. Diagnostics of unknown files go to the fallback.
// Routes must be registered before reports arrive.
type FileRouter struct {
	routes   map[source.FileID]Reporter
	fallback Reporter
}

// NewFileRouter creates a router; fallback may be nil to drop unrouted reports.
func NewFileRouter(fallback Reporter) *FileRouter {
	return &FileRouter{routes: make(map[source.FileID]Reporter), fallback: fallback}
}

// Route registers r for diagnostics located in file.
func (r *FileRouter) Route(file source.FileID, to Reporter) {
	r.routes[file] = to
}

func (r *FileRouter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if to, ok := r.routes[primary.File]; ok && to != nil {
		to.Report(code, sev, primary, msg, notes)
		return
	}
	if r.fallback != nil {
		r.fallback.Report(code, sev, primary, msg, notes)
	}
}
