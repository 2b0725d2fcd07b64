package game

// MatchManager turns scoring events into score changes and decides whether
// the ball is served again or the match is over.
type MatchManager struct {
	Arena Arena
	Rand  RandomSource
}

// NewMatchManager returns a MatchManager drawing serves from rng.
func NewMatchManager(arena Arena, rng RandomSource) MatchManager {
	return MatchManager{Arena: arena, Rand: rng}
}

// OnEvent applies ev to the match. A scoring event increments exactly one
// score; reaching WinScore moves the match to PhaseEnded and leaves the ball
// where it left the field. Otherwise the ball is served again from the centre.
func (m MatchManager) OnEvent(ev Event, state MatchState, ball Ball) (MatchState, Ball) {
	if state.Phase == PhaseEnded {
		return state, ball
	}

	var score *int
	switch ev {
	case EventPlayerScored:
		score = &state.PlayerScore
	case EventAutoScored:
		score = &state.AIScore
	default:
		return state, ball
	}

	*score++
	if *score >= WinScore {
		state.Phase = PhaseEnded
		return state, ball
	}
	return state, m.Serve(state.Phase)
}

// Serve returns a ball at the centre. It only moves while the match is
// running: vx is ±ServeSpeedX and vy is uniform in [-ServeSpeedY, ServeSpeedY).
func (m MatchManager) Serve(phase Phase) Ball {
	b := NewBall(m.Arena)
	if phase != PhaseRunning {
		return b
	}
	b.VX = ServeSpeedX
	if m.Rand.Float64() <= 0.5 {
		b.VX = -ServeSpeedX
	}
	b.VY = ServeSpeedY * (m.Rand.Float64()*2 - 1)
	return b
}
