package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	done := timer.Track("sort")
	done("3 classes")
	idx := timer.Begin("emit")
	timer.End(idx, "")
	timer.End(42, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "sort" || report.Phases[0].Note != "3 classes" {
		t.Fatalf("unexpected first phase: %+v", report.Phases[0])
	}
	summary := timer.Summary()
	if !strings.Contains(summary, "// 3 classes") || !strings.Contains(summary, "total") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty timer report = %+v", r)
	}
}
