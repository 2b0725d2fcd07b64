package game

// AutoController steers the automatic paddle with a first-order proportional
// tracker. It lags behind the ball on purpose.
type AutoController struct {
	Arena Arena
	Gain  float64
}

// NewAutoController returns a controller using AutoGain.
func NewAutoController(arena Arena) AutoController {
	return AutoController{Arena: arena, Gain: AutoGain}
}

// Step returns the paddle's next top edge given the current ball.
func (c AutoController) Step(ball Ball, paddle Paddle) float64 {
	target := ball.Y - paddle.Height/2
	y := paddle.Y + (target-paddle.Y)*c.Gain
	return c.Arena.ClampPaddleY(y)
}
