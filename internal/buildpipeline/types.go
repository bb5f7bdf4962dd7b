package buildpipeline

import "time"

// Stage names a pipeline phase. The first three match driver phase names.
type Stage string

const (
	StageLoad  Stage = "load"
	StageOrder Stage = "order"
	StageLower Stage = "lower"
	// StageLink concatenates the prelude and lowered units into one file.
	StageLink Stage = "link"
)

// Stages lists every stage in execution order.
var Stages = [...]Stage{StageLoad, StageOrder, StageLower, StageLink}

func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Past is the verb printed next to a stage timing.
func (s Stage) Past() string {
	switch s {
	case StageLoad:
		return "loaded"
	case StageOrder:
		return "ordered"
	case StageLower:
		return "lowered"
	case StageLink:
		return "linked"
	}
	return string(s)
}

// Active is the label shown while a unit sits in the stage.
func (s Stage) Active() string {
	switch s {
	case StageLoad:
		return "loading"
	case StageOrder:
		return "ordering"
	case StageLower:
		return "lowering"
	case StageLink:
		return "linking"
	}
	return ""
}

// Weight is how much of a unit's work is behind it once it enters s.
func (s Stage) Weight() float64 {
	switch s {
	case StageLoad:
		return 0.1
	case StageOrder:
		return 0.3
	case StageLower:
		return 0.5
	case StageLink:
		return 0.9
	}
	return 0
}

// Status is the state of a unit (or of the whole build) within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	// StatusCached marks a unit restored from the artifact cache.
	StatusCached
	StatusError
)

// Finished reports whether no further events are expected for the unit.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusCached || s == StatusError
}

// Label renders the status; working units show the stage they are in.
func (s Status) Label(stage Stage) string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return stage.Active()
	case StatusDone:
		return "done"
	case StatusCached:
		return "cached"
	case StatusError:
		return "error"
	}
	return ""
}

// Event reports progress for one unit file, or for the whole build when
// File is empty. Namespace is known only once the unit has been decoded.
type Event struct {
	File      string
	Namespace string
	Stage     Stage
	Status    Status
	Err       error
	Elapsed   time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings records stage durations. The zero value is empty and copies are independent.
type Timings struct {
	durations [len(Stages)]time.Duration
	recorded  [len(Stages)]bool
}

// Set stores the duration of stage; unknown stages are ignored.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	i := stage.index()
	if t == nil || i < 0 {
		return
	}
	t.durations[i] = dur
	t.recorded[i] = true
}

// Lookup returns the duration of stage and whether it was recorded.
func (t Timings) Lookup(stage Stage) (time.Duration, bool) {
	i := stage.index()
	if i < 0 || !t.recorded[i] {
		return 0, false
	}
	return t.durations[i], true
}

// Total sums every recorded stage.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for i, ok := range t.recorded {
		if ok {
			total += t.durations[i]
		}
	}
	return total
}
