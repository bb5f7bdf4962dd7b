package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
// The zero span of a file points at the file as a whole.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Fits reports whether the span lies inside a file of size bytes.
func (s Span) Fits(size uint32) bool {
	return s.Start <= s.End && s.End <= size
}

// Text returns the bytes the span covers in content, or nil when it does not fit.
func (s Span) Text(content []byte) []byte {
	if int(s.End) > len(content) || s.Start > s.End {
		return nil
	}
	return content[s.Start:s.End]
}
