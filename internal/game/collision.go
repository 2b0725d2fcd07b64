package game

// Event is the boundary-crossing outcome of one physics step.
type Event string

const (
	EventNone         Event = "none"
	EventPlayerScored Event = "player_scored"
	EventAutoScored   Event = "auto_scored"
)

// CollisionResolver advances the ball by one tick and resolves wall and
// paddle contacts. There is no sweep test: a ball moving further than a
// paddle's thickness in one tick can pass straight through it.
type CollisionResolver struct {
	Arena Arena
}

// NewCollisionResolver returns a resolver for the arena.
func NewCollisionResolver(arena Arena) CollisionResolver {
	return CollisionResolver{Arena: arena}
}

// Advance integrates one tick and returns the updated ball together with the
// scoring event, if any. Steps run in a fixed order: integrate, walls,
// player paddle, auto paddle, boundaries.
func (r CollisionResolver) Advance(ball Ball, player, auto Paddle) (Ball, Event) {
	ball.X += ball.VX
	ball.Y += ball.VY

	// No repositioning; the ball may overshoot a wall slightly.
	if ball.Y-ball.Radius < 0 || ball.Y+ball.Radius > r.Arena.Height {
		ball.VY = -ball.VY
	}

	if ball.X-ball.Radius < player.Right() && player.spans(ball.Y) {
		ball.VX = -ball.VX
		ball.VY = (ball.Y - player.CenterY()) * SpinFactor
		ball.X = player.Right() + ball.Radius
	}

	if ball.X+ball.Radius > auto.X && auto.spans(ball.Y) {
		ball.VX = -ball.VX
		ball.VY = (ball.Y - auto.CenterY()) * SpinFactor
		ball.X = auto.X - ball.Radius
	}

	switch {
	case ball.X-ball.Radius < 0:
		return ball, EventAutoScored
	case ball.X+ball.Radius > r.Arena.Width:
		return ball, EventPlayerScored
	}
	return ball, EventNone
}
