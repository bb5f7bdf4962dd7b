package jsprint

// writer accumulates output and tracks indentation.
type writer struct {
	opt         Options
	buf         []byte
	indentLevel int
	atLineStart bool
}

func newWriter(opt Options) *writer {
	return &writer{opt: opt, buf: make([]byte, 0, 1024), atLineStart: true}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	if w.opt.UseTabs {
		for range w.indentLevel {
			w.buf = append(w.buf, '\t')
		}
	} else {
		for range w.indentLevel * w.opt.IndentWidth {
			w.buf = append(w.buf, ' ')
		}
	}
	w.atLineStart = false
}

func (w *writer) writeString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.atLineStart = s[len(s)-1] == '\n'
}

func (w *writer) writeByte(b byte) {
	w.writeIndent()
	w.buf = append(w.buf, b)
	w.atLineStart = b == '\n'
}

// newline writes a newline unless the output already ends with one.
func (w *writer) newline() {
	if len(w.buf) > 0 && w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = true
}

func (w *writer) indentPush() { w.indentLevel++ }

func (w *writer) indentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
