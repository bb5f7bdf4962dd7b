package driver

import (
	"encoding/json"
	"fmt"
	"time"

	"lumen/internal/diag"
	"lumen/internal/observ"
	"lumen/internal/source"
)

type unitTiming struct {
	Namespace string  `json:"namespace"`
	MS        float64 `json:"ms"`
	Cached    bool    `json:"cached,omitempty"`
}

type timingPayload struct {
	Kind    string               `json:"kind"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
	Units   []unitTiming         `json:"units,omitempty"`
}

func unitTimings(order []*UnitResult) []unitTiming {
	out := make([]unitTiming, 0, len(order))
	for _, u := range order {
		out = append(out, unitTiming{
			Namespace: u.Namespace,
			MS:        float64(u.Elapsed) / float64(time.Millisecond),
			Cached:    u.Cached,
		})
	}
	return out
}

// appendTimingDiagnostic adds an ObsTimings info entry whose only note is the
// JSON payload. The bag grows past its limit for it.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "lower"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	cached := 0
	for _, u := range payload.Units {
		if u.Cached {
			cached++
		}
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms, %d units (%d cached)", payload.Kind, payload.TotalMS, len(payload.Units), cached)
	entry := diag.NewInfo(diag.ObsTimings, msg).WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
