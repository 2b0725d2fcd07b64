package game

import "fmt"

// Phase is the match lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseRunning Phase = "RUNNING"
	PhaseEnded   Phase = "ENDED"
)

// Side identifies one of the two paddles.
type Side string

const (
	SidePlayer Side = "player"
	SideAuto   Side = "auto"
)

// Arena is the playing field. The origin is the top-left corner.
type Arena struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultArena returns the standard 800x500 field.
func DefaultArena() Arena {
	return Arena{Width: DefaultArenaWidth, Height: DefaultArenaHeight}
}

// Center returns the arena midpoint.
func (a Arena) Center() (float64, float64) {
	return a.Width / 2, a.Height / 2
}

// MaxPaddleY is the largest legal top edge for a paddle.
func (a Arena) MaxPaddleY() float64 {
	return a.Height - PaddleHeight
}

// ClampPaddleY restricts y to [0, Height-PaddleHeight].
func (a Arena) ClampPaddleY(y float64) float64 {
	return clamp(y, 0, a.MaxPaddleY())
}

// Paddle is a vertically movable rectangle. X, Width and Height never change
// after construction; Y is only written through SetY.
type Paddle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewPaddle creates a paddle for the given side, vertically centred.
func NewPaddle(arena Arena, side Side) Paddle {
	x := PaddleInset
	if side == SideAuto {
		x = arena.Width - PaddleInset - PaddleWidth
	}
	p := Paddle{X: x, Width: PaddleWidth, Height: PaddleHeight}
	p.Center(arena)
	return p
}

// SetY writes the top edge, clamped into the arena.
func (p *Paddle) SetY(arena Arena, y float64) {
	p.Y = arena.ClampPaddleY(y)
}

// Center moves the paddle to the vertical middle of the arena.
func (p *Paddle) Center(arena Arena) {
	p.SetY(arena, arena.Height/2-p.Height/2)
}

// CenterY is the vertical midpoint of the paddle.
func (p Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

// Right is the x coordinate of the paddle's right edge.
func (p Paddle) Right() float64 {
	return p.X + p.Width
}

// spans reports whether y lies strictly inside the paddle's vertical extent.
func (p Paddle) spans(y float64) bool {
	return y > p.Y && y < p.Y+p.Height
}

// Ball is a circle with a per-tick velocity.
type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
}

// NewBall returns a still ball at the arena centre.
func NewBall(arena Arena) Ball {
	b := Ball{Radius: BallRadius}
	b.Center(arena)
	return b
}

// Center places the ball at the arena midpoint and stops it.
func (b *Ball) Center(arena Arena) {
	b.X, b.Y = arena.Center()
	b.VX, b.VY = 0, 0
}

// Still reports whether the ball has zero velocity.
func (b Ball) Still() bool {
	return b.VX == 0 && b.VY == 0
}

// MatchState holds the score and lifecycle phase.
type MatchState struct {
	PlayerScore int   `json:"player_score"`
	AIScore     int   `json:"ai_score"`
	Phase       Phase `json:"phase"`
}

// Winner returns the side that reached WinScore, or "" if nobody has.
func (m MatchState) Winner() Side {
	switch {
	case m.PlayerScore >= WinScore:
		return SidePlayer
	case m.AIScore >= WinScore:
		return SideAuto
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks that the arena can hold both paddles and the ball.
func (a Arena) Validate() error {
	if a.Height <= PaddleHeight || a.Height <= 2*BallRadius {
		return fmt.Errorf("arena height %.0f too small", a.Height)
	}
	if a.Width <= 2*(PaddleInset+PaddleWidth+2*BallRadius) {
		return fmt.Errorf("arena width %.0f too small", a.Width)
	}
	return nil
}
