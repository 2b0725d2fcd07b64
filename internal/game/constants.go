package game

// Arena and physics constants for a single pong match.
// Only the arena size is a deployment setting; everything else is fixed.
const (
	DefaultArenaWidth  = 800.0
	DefaultArenaHeight = 500.0

	PaddleWidth  = 12.0
	PaddleHeight = 80.0
	PaddleInset  = 20.0 // gap between a side wall and its paddle
	BallRadius   = 12.0

	AutoGain   = 0.08 // proportional gain of the automatic paddle
	SpinFactor = 0.25 // contact offset -> vertical velocity

	ServeSpeedX = 4.0
	ServeSpeedY = 3.0 // |vy| upper bound on serve

	WinScore = 10
)
