package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// keep their registration order.
type Runner struct {
	systems []System
	sorted  bool

	budget time.Duration
	onSlow func(elapsed time.Duration)
	now    func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		now:     time.Now,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// OnSlowTick calls fn after every full tick that took longer than budget.
func (r *Runner) OnSlowTick(budget time.Duration, fn func(elapsed time.Duration)) {
	r.budget = budget
	r.onSlow = fn
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	start := r.now()
	for _, s := range r.systems {
		s.Update(dt)
	}
	if r.onSlow != nil {
		if elapsed := r.now().Sub(start); elapsed > r.budget {
			r.onSlow(elapsed)
		}
	}
}

// TickPhase runs only the systems of one phase. The server uses it to drain
// input between full ticks.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
