package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a pipeline phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Lower.
type PhaseObserver func(PhaseEvent)

// UnitStatus is the state of one unit inside the lower phase.
type UnitStatus int

const (
	UnitStarted UnitStatus = iota
	UnitLowered
	UnitCached
	UnitFailed
	UnitSkipped // a dependency failed
)

// UnitEvent reports progress of one unit.
type UnitEvent struct {
	Namespace string
	Path      string
	Status    UnitStatus
	Err       error
	Elapsed   time.Duration
}

// UnitObserver receives unit events. It is called from worker goroutines.
type UnitObserver func(UnitEvent)
