package game

import (
	"errors"
	"math/rand"
	"testing"
)

func assertIdleLayout(t *testing.T, snap Snapshot) {
	t.Helper()
	cx, cy := snap.Arena.Center()
	centred := snap.Arena.Height/2 - PaddleHeight/2
	if snap.Player.Y != centred || snap.Auto.Y != centred {
		t.Errorf("expected paddles centred at %.1f, got player=%.1f auto=%.1f", centred, snap.Player.Y, snap.Auto.Y)
	}
	if snap.Ball.X != cx || snap.Ball.Y != cy {
		t.Errorf("expected ball at centre, got (%.2f,%.2f)", snap.Ball.X, snap.Ball.Y)
	}
	if snap.Match.PlayerScore != 0 || snap.Match.AIScore != 0 {
		t.Errorf("expected 0:0, got %d:%d", snap.Match.PlayerScore, snap.Match.AIScore)
	}
}

func TestNewSimulationIsIdle(t *testing.T) {
	sim := NewSimulation(DefaultArena(), NewRandomSource(1))
	snap := sim.Snapshot()

	if snap.Match.Phase != PhaseIdle {
		t.Fatalf("expected %s, got %s", PhaseIdle, snap.Match.Phase)
	}
	assertIdleLayout(t, snap)
	if !snap.Ball.Still() {
		t.Errorf("idle ball must be still")
	}
	if snap.Prompt != "Start Game" {
		t.Errorf("unexpected prompt %q", snap.Prompt)
	}

	for i := 0; i < 100; i++ {
		sim.Tick()
	}
	if after := sim.Snapshot(); after != snap {
		t.Errorf("idle ticks changed state: %+v -> %+v", snap, after)
	}
}

func TestStartServesBall(t *testing.T) {
	sim := NewSimulation(DefaultArena(), NewRandomSource(3))
	sim.SetPlayerTarget(0)

	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := sim.Snapshot()
	if snap.Match.Phase != PhaseRunning {
		t.Fatalf("expected %s, got %s", PhaseRunning, snap.Match.Phase)
	}
	if snap.Ball.VX != ServeSpeedX && snap.Ball.VX != -ServeSpeedX {
		t.Errorf("expected serve speed ±%.0f, got %.2f", ServeSpeedX, snap.Ball.VX)
	}
	if snap.Player.Y != snap.Arena.Height/2-PaddleHeight/2 {
		t.Errorf("start must recentre the player paddle, y=%.1f", snap.Player.Y)
	}
	if snap.Prompt != "" {
		t.Errorf("running match should have no prompt, got %q", snap.Prompt)
	}
}

func TestIllegalCommandsAreRejected(t *testing.T) {
	sim := NewSimulation(DefaultArena(), NewRandomSource(3))

	if err := sim.Restart(); !errors.Is(err, ErrCommandNotAllowed) {
		t.Errorf("restart while idle: expected ErrCommandNotAllowed, got %v", err)
	}
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	before := sim.Snapshot()
	if err := sim.Start(); !errors.Is(err, ErrCommandNotAllowed) {
		t.Errorf("start while running: expected ErrCommandNotAllowed, got %v", err)
	}
	if err := sim.Restart(); !errors.Is(err, ErrCommandNotAllowed) {
		t.Errorf("restart while running: expected ErrCommandNotAllowed, got %v", err)
	}
	if after := sim.Snapshot(); after != before {
		t.Errorf("rejected commands changed state")
	}
}

func TestPaddlesStayInArena(t *testing.T) {
	sim := NewSimulation(DefaultArena(), NewRandomSource(11))
	input := rand.New(rand.NewSource(99))
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	maxY := sim.arena.MaxPaddleY()
	for i := 0; i < 20000; i++ {
		sim.SetPlayerTarget(input.Float64()*900 - 200)
		sim.Tick()
		if sim.Phase() == PhaseEnded {
			if err := sim.Restart(); err != nil {
				t.Fatalf("restart: %v", err)
			}
		}
		for _, p := range []Paddle{sim.player, sim.auto} {
			if p.Y < 0 || p.Y > maxY {
				t.Fatalf("tick %d: paddle y=%.3f outside [0, %.1f]", i, p.Y, maxY)
			}
		}
	}
}

// playToEnd parks the player paddle at the top so the auto side wins.
func playToEnd(t *testing.T, sim *Simulation) {
	t.Helper()
	prev := sim.Snapshot().Match
	for i := 0; i < 500000; i++ {
		sim.SetPlayerTarget(0)
		sim.Tick()
		cur := sim.Snapshot().Match
		if cur.PlayerScore < prev.PlayerScore || cur.AIScore < prev.AIScore {
			t.Fatalf("tick %d: score decreased %d:%d -> %d:%d", i, prev.PlayerScore, prev.AIScore, cur.PlayerScore, cur.AIScore)
		}
		if d := (cur.PlayerScore - prev.PlayerScore) + (cur.AIScore - prev.AIScore); d > 1 {
			t.Fatalf("tick %d: more than one point awarded in one tick", i)
		}
		prev = cur
		if cur.Phase == PhaseEnded {
			return
		}
	}
	t.Fatalf("match did not end, score %d:%d", prev.PlayerScore, prev.AIScore)
}

func TestMatchEndsAtWinScore(t *testing.T) {
	sim := NewSimulation(DefaultArena(), NewRandomSource(5))
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	playToEnd(t, sim)

	final := sim.Snapshot()
	if final.Match.PlayerScore != WinScore && final.Match.AIScore != WinScore {
		t.Errorf("match ended at %d:%d without reaching %d", final.Match.PlayerScore, final.Match.AIScore, WinScore)
	}
	if final.Prompt != "Play Again" {
		t.Errorf("unexpected prompt %q", final.Prompt)
	}

	for i := 0; i < 200; i++ {
		sim.Tick()
	}
	if after := sim.Snapshot(); after != final {
		t.Errorf("ended match kept changing: %+v -> %+v", final.Match, after.Match)
	}
}

func TestRestartFromEnded(t *testing.T) {
	sim := NewSimulation(DefaultArena(), NewRandomSource(8))
	if err := sim.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	playToEnd(t, sim)

	if err := sim.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	snap := sim.Snapshot()
	if snap.Match.Phase != PhaseRunning {
		t.Fatalf("expected %s, got %s", PhaseRunning, snap.Match.Phase)
	}
	assertIdleLayout(t, snap)
	if snap.Ball.Still() {
		t.Errorf("restart must serve the ball")
	}
	if snap.Tick != 0 {
		t.Errorf("expected tick counter reset, got %d", snap.Tick)
	}
}

func TestSimulationDeterminism(t *testing.T) {
	run := func() Snapshot {
		sim := NewSimulation(DefaultArena(), NewRandomSource(2024))
		sim.Start()
		for i := 0; i < 5000 && sim.Phase() == PhaseRunning; i++ {
			sim.SetPlayerTarget(float64(i % 420))
			sim.Tick()
		}
		return sim.Snapshot()
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("non-deterministic run:\n%+v\n%+v", a, b)
	}
}
