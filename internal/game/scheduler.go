package game

import (
	"context"
	"sync"
	"time"
)

// DefaultTickRate is one tick per rendered frame at 60 fps.
const DefaultTickRate = 60

// Command is an external lifecycle request honoured at the next tick boundary.
type Command string

const (
	CommandStart   Command = "start"
	CommandRestart Command = "restart"
)

// Renderer consumes one snapshot per tick. It must not retain pointers into
// the simulation; snapshots are values.
type Renderer interface {
	Render(Snapshot)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

// CommandResult reports how a queued command was handled.
type CommandResult struct {
	Command Command
	Err     error
}

// StepResult is what one scheduler step did.
type StepResult struct {
	TickResult
	Commands []CommandResult
}

// Scheduler drives a Simulation. Input arriving between ticks is buffered and
// applied at the next boundary, so the simulation itself is only ever touched
// from inside Step.
type Scheduler struct {
	sim      *Simulation
	renderer Renderer
	interval time.Duration

	mu        sync.Mutex
	target    float64
	hasTarget bool
	commands  []Command
	latest    Snapshot

	stepMu sync.Mutex
}

// NewScheduler wraps sim. tickRate is in ticks per second; non-positive
// values fall back to DefaultTickRate. renderer may be nil.
func NewScheduler(sim *Simulation, renderer Renderer, tickRate int) *Scheduler {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Scheduler{
		sim:      sim,
		renderer: renderer,
		interval: time.Second / time.Duration(tickRate),
		latest:   sim.Snapshot(),
	}
}

// SetPlayerTarget records the player's desired paddle top edge. Only the last
// value before a tick is used.
func (s *Scheduler) SetPlayerTarget(y float64) {
	s.mu.Lock()
	s.target, s.hasTarget = y, true
	s.mu.Unlock()
}

// Submit queues a lifecycle command for the next tick boundary.
func (s *Scheduler) Submit(cmd Command) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// Latest returns the snapshot rendered by the most recent step.
func (s *Scheduler) Latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Interval is the time between ticks in Run.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Step applies buffered input, runs exactly one simulation tick and renders.
func (s *Scheduler) Step() StepResult {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	s.mu.Lock()
	target, hasTarget := s.target, s.hasTarget
	commands := s.commands
	s.hasTarget = false
	s.commands = nil
	s.mu.Unlock()

	var res StepResult
	startPhase := s.sim.Phase()

	// A target sent in the same step as start is dropped; Start recentres.
	if hasTarget && startPhase == PhaseRunning {
		s.sim.SetPlayerTarget(target)
	}

	for _, cmd := range commands {
		var err error
		switch cmd {
		case CommandStart:
			err = s.sim.Start()
		case CommandRestart:
			err = s.sim.Restart()
		default:
			err = ErrCommandNotAllowed
		}
		res.Commands = append(res.Commands, CommandResult{Command: cmd, Err: err})
	}

	res.TickResult = s.sim.Tick()
	res.PhaseChanged = s.sim.Phase() != startPhase

	snap := s.sim.Snapshot()
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	if s.renderer != nil {
		s.renderer.Render(snap)
	}
	return res
}

// Run steps the simulation on a fixed cadence until ctx is cancelled. onStep,
// if non-nil, sees every step result after rendering.
func (s *Scheduler) Run(ctx context.Context, onStep func(StepResult)) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			res := s.Step()
			if onStep != nil {
				onStep(res)
			}
		}
	}
}
