package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // drain session queues, apply player input
	PhasePreUpdate               // dispatch last tick's events
	PhaseUpdate                  // world simulation
	PhasePostUpdate              // tallies, mission status
	PhaseOutput                  // snapshots, flush sessions
	PhasePersist                 // mission results
)

// System is one stage of the server tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
