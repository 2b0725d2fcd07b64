package game

import "errors"

// ErrCommandNotAllowed is returned for a start or restart issued in a phase
// that does not accept it. The simulation is left unchanged.
var ErrCommandNotAllowed = errors.New("command not allowed in current phase")

// Snapshot is a read-only copy of the simulation handed to renderers.
type Snapshot struct {
	Tick   uint64     `json:"tick"`
	Arena  Arena      `json:"arena"`
	Player Paddle     `json:"player"`
	Auto   Paddle     `json:"auto"`
	Ball   Ball       `json:"ball"`
	Match  MatchState `json:"match"`
	Prompt string     `json:"prompt,omitempty"`
}

// TickResult describes what a single Tick did.
type TickResult struct {
	Tick         uint64 `json:"tick"`
	Event        Event  `json:"event"`
	Phase        Phase  `json:"phase"`
	PhaseChanged bool   `json:"phase_changed"`
}

// Simulation is the single context owning every entity of one match. It is
// not safe for concurrent use; Scheduler serialises access to it.
type Simulation struct {
	arena  Arena
	player Paddle
	auto   Paddle
	ball   Ball
	state  MatchState
	tick   uint64

	controller AutoController
	resolver   CollisionResolver
	matches    MatchManager
}

// NewSimulation returns an idle match on the given arena.
func NewSimulation(arena Arena, rng RandomSource) *Simulation {
	s := &Simulation{
		arena:      arena,
		controller: NewAutoController(arena),
		resolver:   NewCollisionResolver(arena),
		matches:    NewMatchManager(arena, rng),
	}
	s.reset()
	return s
}

// reset puts the match back into the idle layout.
func (s *Simulation) reset() {
	s.player = NewPaddle(s.arena, SidePlayer)
	s.auto = NewPaddle(s.arena, SideAuto)
	s.state = MatchState{Phase: PhaseIdle}
	s.ball = s.matches.Serve(PhaseIdle)
	s.tick = 0
}

// Start moves an idle match to running and serves the ball.
func (s *Simulation) Start() error {
	if s.state.Phase != PhaseIdle {
		return ErrCommandNotAllowed
	}
	s.player.Center(s.arena)
	s.auto.Center(s.arena)
	s.state.Phase = PhaseRunning
	s.ball = s.matches.Serve(PhaseRunning)
	return nil
}

// Restart clears an ended match back to idle and starts it again.
func (s *Simulation) Restart() error {
	if s.state.Phase != PhaseEnded {
		return ErrCommandNotAllowed
	}
	s.reset()
	return s.Start()
}

// SetPlayerTarget moves the player paddle's top edge to y, clamped.
func (s *Simulation) SetPlayerTarget(y float64) {
	s.player.SetY(s.arena, y)
}

// Tick advances one frame. Nothing moves unless the match is running.
func (s *Simulation) Tick() TickResult {
	if s.state.Phase != PhaseRunning {
		return TickResult{Tick: s.tick, Event: EventNone, Phase: s.state.Phase}
	}
	s.tick++

	s.auto.SetY(s.arena, s.controller.Step(s.ball, s.auto))

	ball, ev := s.resolver.Advance(s.ball, s.player, s.auto)
	s.state, s.ball = s.matches.OnEvent(ev, s.state, ball)

	return TickResult{
		Tick:         s.tick,
		Event:        ev,
		Phase:        s.state.Phase,
		PhaseChanged: s.state.Phase != PhaseRunning,
	}
}

// Phase returns the current lifecycle phase.
func (s *Simulation) Phase() Phase {
	return s.state.Phase
}

// Snapshot copies the current state.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   s.tick,
		Arena:  s.arena,
		Player: s.player,
		Auto:   s.auto,
		Ball:   s.ball,
		Match:  s.state,
	}
	switch s.state.Phase {
	case PhaseIdle:
		snap.Prompt = "Start Game"
	case PhaseEnded:
		snap.Prompt = "Play Again"
	}
	return snap
}

// PaddleTopForPointer converts a pointer y coordinate into the top edge of a
// paddle centred on it.
func PaddleTopForPointer(pointerY float64) float64 {
	return pointerY - PaddleHeight/2
}
